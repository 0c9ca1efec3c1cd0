// Package optimize carries solutions of dynamics graphs across the
// boundary to nonlinear least squares solvers. The graph layer never
// depends on a concrete solver; this package adapts one.
package optimize

import (
	"context"

	"github.com/pkg/errors"

	"github.com/kinodynamics/kinodyn/dynamics"
)

// ErrNoConvergence reports that the solver ran but did not reach its
// convergence tolerance. It is distinct from configuration errors; callers
// may still use the returned assignment as a warm start.
var ErrNoConvergence = errors.New("solver did not converge to tolerance")

// Solver minimizes a graph's weighted squared residual starting from an
// initial assignment. The initial assignment must cover every variable the
// graph touches.
type Solver interface {
	Solve(ctx context.Context, g *dynamics.Graph, initial dynamics.Assignment) (dynamics.Assignment, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, g *dynamics.Graph, initial dynamics.Assignment) (dynamics.Assignment, error)

// Solve calls f.
func (f SolverFunc) Solve(ctx context.Context, g *dynamics.Graph, initial dynamics.Assignment) (dynamics.Assignment, error) {
	return f(ctx, g, initial)
}
