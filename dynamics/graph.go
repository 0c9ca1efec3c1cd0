package dynamics

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Graph is an ordered collection of constraints over a shared variable set.
// Order is insertion order and is deterministic, which keeps residual
// vectors and solver charts stable across runs.
type Graph struct {
	constraints []Constraint
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Add appends constraints to the graph.
func (g *Graph) Add(cs ...Constraint) {
	g.constraints = append(g.constraints, cs...)
}

// Merge appends all of o's constraints to g.
func (g *Graph) Merge(o *Graph) {
	g.constraints = append(g.constraints, o.constraints...)
}

// Constraints returns the constraints in insertion order.
func (g *Graph) Constraints() []Constraint {
	return g.constraints
}

// Size returns the number of constraints.
func (g *Graph) Size() int {
	return len(g.constraints)
}

// Dim returns the total residual dimension.
func (g *Graph) Dim() int {
	var dim int
	for _, c := range g.constraints {
		dim += c.Dim()
	}
	return dim
}

// Keys returns the sorted set of variables the graph touches.
func (g *Graph) Keys() []Key {
	seen := make(map[Key]bool)
	var out []Key
	for _, c := range g.constraints {
		for _, k := range c.Keys() {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Residual evaluates all constraints at a and concatenates their residuals
// in graph order, unweighted.
func (g *Graph) Residual(a Assignment) ([]float64, error) {
	out := make([]float64, 0, g.Dim())
	for _, c := range g.constraints {
		lin, err := c.Linearize(a)
		if err != nil {
			return nil, err
		}
		out = append(out, lin.Residual...)
	}
	return out, nil
}

// WeightedError evaluates the sum of squared sigma-weighted residuals at a.
func (g *Graph) WeightedError(a Assignment) (float64, error) {
	var total float64
	for _, c := range g.constraints {
		lin, err := c.Linearize(a)
		if err != nil {
			return 0, err
		}
		s := c.Sigma()
		total += floats.Dot(lin.Residual, lin.Residual) / (s * s)
	}
	return total, nil
}
