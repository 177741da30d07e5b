// Package solver minimises objectives over fully invested, box-bounded weight vectors.
//
// The decision vector is mapped through the exact projection onto
// {Σw = 1, lo ≤ w ≤ hi}, so every point the objective sees is feasible for the
// budget and bound constraints. Additional equality constraints are enforced with a
// quadratic penalty whose weight is raised between rounds and checked after the solve.
package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

const (
	// DefaultTolerance is the largest equality-constraint residual accepted after a solve.
	DefaultTolerance = 1e-4

	invalidObjective = 1e10
)

var penaltySchedule = []float64{1e2, 1e4, 1e6}

// Equality is a constraint c(w) = 0 evaluated on projected weights.
type Equality struct {
	Name string
	Func func(w []float64) float64
}

// Problem describes a constrained minimisation over portfolio weights.
type Problem struct {
	// Objective is evaluated on projected, feasible weights.
	Objective  func(w []float64) float64
	Bounds     Bounds
	Equalities []Equality
	// Initial defaults to equal weights when nil.
	Initial []float64
	// Tolerance defaults to DefaultTolerance.
	Tolerance float64
}

// Result is the outcome of a successful solve.
type Result struct {
	Weights     []float64
	Objective   float64
	Status      optimize.Status
	Method      string
	Evaluations int
	Residuals   map[string]float64
}

// InfeasibleError reports bounds or equality constraints that cannot be met.
type InfeasibleError struct {
	Reason string
}

func (e *InfeasibleError) Error() string {
	return "infeasible: " + e.Reason
}

// Minimize solves the problem with BFGS on central finite-difference gradients,
// falling back to Nelder-Mead when BFGS fails or ends worse.
func Minimize(p Problem) (*Result, error) {
	if p.Objective == nil {
		return nil, fmt.Errorf("objective is required")
	}
	if err := p.Bounds.Validate(); err != nil {
		return nil, &InfeasibleError{Reason: err.Error()}
	}
	n := len(p.Bounds.Lower)

	tol := p.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}

	x := make([]float64, n)
	if len(p.Initial) == n {
		copy(x, p.Initial)
	} else {
		for i := range x {
			x[i] = 1.0 / float64(n)
		}
	}
	x = p.Bounds.Project(x)

	if n == 1 {
		return p.finish(x, "closed_form", optimize.Success, 0, tol)
	}

	schedule := penaltySchedule
	if len(p.Equalities) == 0 {
		schedule = []float64{0}
	}

	var (
		status optimize.Status
		method string
		evals  int
	)
	for _, penalty := range schedule {
		round, err := p.solveRound(x, penalty)
		if err != nil {
			return nil, err
		}
		x = round.X
		status = round.Status
		method = round.method
		evals += round.Stats.FuncEvaluations
	}

	return p.finish(p.Bounds.Project(x), method, status, evals, tol)
}

type roundResult struct {
	*optimize.Result
	method string
}

func (p Problem) solveRound(start []float64, penalty float64) (*roundResult, error) {
	f := func(x []float64) float64 {
		w := p.Bounds.Project(x)
		v := p.Objective(w)
		for _, eq := range p.Equalities {
			r := eq.Func(w)
			v += penalty * r * r
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalidObjective
		}
		return v
	}

	problem := optimize.Problem{
		Func: f,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, f, x, &fd.Settings{Formula: fd.Central})
		},
	}
	settings := &optimize.Settings{
		MajorIterations: 500,
		FuncEvaluations: 50000,
	}

	var best *roundResult
	bfgs, bfgsErr := optimize.Minimize(problem, start, settings, &optimize.BFGS{})
	if bfgs != nil && isFinite(bfgs.F) {
		best = &roundResult{Result: bfgs, method: "bfgs"}
	}

	if bfgsErr != nil || best == nil || !converged(best.Status) {
		nm, nmErr := optimize.Minimize(problem, start, settings, &optimize.NelderMead{})
		if nm != nil && isFinite(nm.F) && (best == nil || nm.F < best.F) {
			best = &roundResult{Result: nm, method: "nelder_mead"}
		}
		if best == nil {
			if nmErr == nil {
				nmErr = bfgsErr
			}
			return nil, fmt.Errorf("solver failed: %w", nmErr)
		}
	}

	// Never step away from a start point that was already better.
	if startF := f(start); startF < best.F {
		best.X = append([]float64(nil), start...)
		best.F = startF
	}

	return best, nil
}

func (p Problem) finish(w []float64, method string, status optimize.Status, evals int, tol float64) (*Result, error) {
	res := &Result{
		Weights:     w,
		Objective:   p.Objective(w),
		Status:      status,
		Method:      method,
		Evaluations: evals,
		Residuals:   make(map[string]float64, len(p.Equalities)),
	}
	for _, eq := range p.Equalities {
		r := eq.Func(w)
		res.Residuals[eq.Name] = r
		if math.IsNaN(r) || math.Abs(r) > tol {
			return nil, &InfeasibleError{
				Reason: fmt.Sprintf("constraint %s not satisfied (residual %.2e)", eq.Name, r),
			}
		}
	}
	return res, nil
}

func converged(status optimize.Status) bool {
	return status == optimize.Success ||
		status == optimize.GradientThreshold ||
		status == optimize.FunctionConvergence
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
