package optimize

import (
	"context"
	"math"
	"sync"

	"github.com/edaniels/golog"
	"github.com/go-nlopt/nlopt"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/kinodynamics/kinodyn/dynamics"
)

const (
	defaultMaxEvals = 5000
	defaultEpsilon  = 1e-10
)

// NloptOptions configures the SLSQP adapter. Zero values select defaults.
type NloptOptions struct {
	// MaxEvals caps objective evaluations. Defaults to 5000.
	MaxEvals int
	// Epsilon is both the convergence tolerance on the weighted squared
	// error and the relative stopping tolerance. Defaults to 1e-10.
	Epsilon float64
	// Bounds optionally box-constrains individual variables. Each entry
	// bounds all of the key's chart coordinates to [lower, upper] about
	// the seed. Unlisted variables are unbounded.
	Bounds map[dynamics.Key][2]float64
}

// NloptSolver minimizes graphs with nlopt's gradient based SLSQP, feeding
// it the analytic gradient 2 J^T r of the weighted squared residual.
type NloptSolver struct {
	maxEvals int
	epsilon  float64
	bounds   map[dynamics.Key][2]float64
	logger   golog.Logger
}

type solveResult struct {
	x     []float64
	score float64
	err   error
}

// NewNloptSolver returns an SLSQP solver with defaulted options.
func NewNloptSolver(opts NloptOptions, logger golog.Logger) *NloptSolver {
	if opts.MaxEvals < 1 {
		opts.MaxEvals = defaultMaxEvals
	}
	if opts.Epsilon == 0 {
		opts.Epsilon = defaultEpsilon
	}
	return &NloptSolver{
		maxEvals: opts.MaxEvals,
		epsilon:  opts.Epsilon,
		bounds:   opts.Bounds,
		logger:   logger,
	}
}

// Solve minimizes g from initial. When the optimum stays above tolerance
// the improved assignment is returned together with ErrNoConvergence.
func (s *NloptSolver) Solve(ctx context.Context, g *dynamics.Graph, initial dynamics.Assignment) (dynamics.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch, err := newChart(g, initial)
	if err != nil {
		return nil, err
	}

	opt, err := nlopt.NewNLopt(nlopt.LD_SLSQP, uint(ch.dim))
	if err != nil {
		return nil, errors.Wrap(err, "nlopt creation error")
	}
	defer opt.Destroy()

	var evalErr error
	objective := func(x, gradient []float64) float64 {
		a, err := ch.assignment(x)
		if err != nil {
			evalErr = err
			if stopErr := opt.ForceStop(); stopErr != nil {
				s.logger.Errorw("forcestop error", "error", stopErr)
			}
			return 0
		}
		for i := range gradient {
			gradient[i] = 0
		}
		var total float64
		for _, c := range g.Constraints() {
			lin, err := c.Linearize(a)
			if err != nil {
				evalErr = err
				if stopErr := opt.ForceStop(); stopErr != nil {
					s.logger.Errorw("forcestop error", "error", stopErr)
				}
				return 0
			}
			total += ch.accumulate(lin, c.Sigma(), x, gradient)
		}
		return total
	}

	lower, upper := s.boundArrays(ch)
	err = multierr.Combine(
		opt.SetFtolRel(s.epsilon),
		opt.SetFtolAbs(s.epsilon),
		opt.SetLowerBounds(lower),
		opt.SetStopVal(s.epsilon),
		opt.SetUpperBounds(upper),
		opt.SetXtolRel(s.epsilon),
		opt.SetXtolAbs1(s.epsilon),
		opt.SetMinObjective(objective),
		opt.SetMaxEval(s.maxEvals),
	)
	if err != nil {
		return nil, err
	}

	var activeSolvers sync.WaitGroup
	solveChan := make(chan *solveResult, 1)
	activeSolvers.Add(1)
	utils.PanicCapturingGo(func() {
		defer activeSolvers.Done()
		x, score, optErr := opt.Optimize(make([]float64, ch.dim))
		solveChan <- &solveResult{x, score, optErr}
	})

	var res *solveResult
	select {
	case <-ctx.Done():
		err = opt.ForceStop()
		activeSolvers.Wait()
		return nil, multierr.Combine(err, ctx.Err())
	case res = <-solveChan:
	}
	if evalErr != nil {
		return nil, evalErr
	}
	if res.err != nil && res.x == nil {
		return nil, res.err
	}

	solved, err := ch.assignment(res.x)
	if err != nil {
		return nil, err
	}
	if res.score > s.epsilon {
		s.logger.Debugw("stopped above tolerance", "score", res.score)
		return solved, ErrNoConvergence
	}
	return solved, nil
}

func (s *NloptSolver) boundArrays(ch *chart) ([]float64, []float64) {
	lower := make([]float64, ch.dim)
	upper := make([]float64, ch.dim)
	for i := range lower {
		lower[i] = math.Inf(-1)
		upper[i] = math.Inf(1)
	}
	for k, b := range s.bounds {
		off, ok := ch.offsets[k]
		if !ok {
			continue
		}
		for i := 0; i < k.LocalDim(); i++ {
			lower[off+i] = b[0]
			upper[off+i] = b[1]
		}
	}
	return lower, upper
}
