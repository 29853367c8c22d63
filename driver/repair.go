// Package driver runs solve loops on top of lp solvers.
//
// Repair relaxes an infeasible problem by repeatedly asking the solver for
// an irreducible infeasible subset (IIS) and removing it, the way modelling
// workflows prune inconsistent thermodynamic data before a real analysis.
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/katalvlaran/tfa/lp"
)

// Sentinel errors.
var (
	// ErrRepairExhausted means the problem is still infeasible after the
	// allowed number of rounds.
	ErrRepairExhausted = errors.New("driver: repair rounds exhausted")

	// ErrEmptyIIS means the solver reported infeasibility without naming
	// any constraint to remove.
	ErrEmptyIIS = errors.New("driver: solver returned an empty IIS")

	// ErrBadRounds rejects a non-positive round limit.
	ErrBadRounds = errors.New("driver: maxRounds must be > 0")
)

// IISSolver is a solver that can explain infeasibility.
type IISSolver interface {
	lp.Solver

	// IIS returns the names of an irreducible infeasible subset of p's
	// constraints.
	IIS(ctx context.Context, p *lp.Problem) ([]string, error)
}

// RepairResult is the outcome of Repair.
type RepairResult struct {
	// Solution is the last solution returned by the solver.
	Solution *lp.Solution

	// Removed lists the constraint names dropped in each round.
	Removed [][]string

	// Rounds counts the Solve calls.
	Rounds int
}

// Repair solves p; while the status is infeasible it removes the solver's
// IIS from p and solves again. p is modified in place; pass p.Clone() to keep
// it intact.
//
// Steps per round:
//  1. Check ctx for cancellation.
//  2. Solve; stop on any status other than StatusInfeasible.
//  3. Query the IIS and remove every named constraint that still exists.
//
// Errors: ErrBadRounds, ErrEmptyIIS, ErrRepairExhausted (with the partial
// result), ctx.Err(), solver errors.
//
// Complexity: O(maxRounds · cost(Solve + IIS)).
func Repair(ctx context.Context, p *lp.Problem, s IISSolver, maxRounds int) (*RepairResult, error) {
	if maxRounds <= 0 {
		return nil, ErrBadRounds
	}
	logger := p.Logger()
	res := &RepairResult{}

	for res.Rounds < maxRounds {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		sol, err := s.Solve(ctx, p)
		res.Rounds++
		if err != nil {
			return res, fmt.Errorf("Repair: solve: %w", err)
		}
		res.Solution = sol
		if sol.Status != lp.StatusInfeasible {
			return res, nil
		}

		iis, err := s.IIS(ctx, p)
		if err != nil {
			return res, fmt.Errorf("Repair: iis: %w", err)
		}
		var removed []string
		for _, name := range iis {
			if p.HasConstraint(name) {
				if err = p.RemoveConstraint(name); err != nil {
					return res, err
				}
				removed = append(removed, name)
			}
		}
		if len(removed) == 0 {
			return res, fmt.Errorf("Repair: round %d: %w", res.Rounds, ErrEmptyIIS)
		}
		res.Removed = append(res.Removed, removed)
		logger.Warn("removed irreducible infeasible subset",
			slog.Int("round", res.Rounds),
			slog.Any("constraints", removed))
	}

	return res, fmt.Errorf("Repair: %d rounds: %w", maxRounds, ErrRepairExhausted)
}

// Flatten returns every removed constraint name in removal order.
func (r *RepairResult) Flatten() []string {
	var out []string
	for _, round := range r.Removed {
		out = append(out, round...)
	}

	return out
}
