package driver_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/katalvlaran/tfa/driver"
	"github.com/katalvlaran/tfa/lp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// conflictSolver is infeasible while any conflict group is fully present;
// its IIS is the first such group.
type conflictSolver struct {
	lp.Backend
	groups [][]string
	iisErr error
	solves int
}

func (c *conflictSolver) active(p *lp.Problem) []string {
	for _, g := range c.groups {
		all := true
		for _, name := range g {
			all = all && p.HasConstraint(name)
		}
		if all {
			return g
		}
	}

	return nil
}

func (c *conflictSolver) Solve(_ context.Context, p *lp.Problem) (*lp.Solution, error) {
	c.solves++
	if c.active(p) != nil {
		return &lp.Solution{Status: lp.StatusInfeasible}, nil
	}

	return &lp.Solution{Status: lp.StatusOptimal, Objective: 1}, nil
}

func (c *conflictSolver) IIS(_ context.Context, p *lp.Problem) ([]string, error) {
	if c.iisErr != nil {
		return nil, c.iisErr
	}

	return c.active(p), nil
}

func problem(t *testing.T, buf *bytes.Buffer) *lp.Problem {
	t.Helper()
	p := lp.NewProblem(lp.WithLogger(slog.New(slog.NewTextHandler(buf, nil))))
	require.NoError(t, p.AddVariable(lp.Variable{Name: "x", Lower: 0, Upper: 10}))
	for _, c := range []lp.Constraint{
		{Name: "lo", Expr: lp.Expr{{Var: "x", Coef: 1}}, Lower: 5, Upper: lp.Inf},
		{Name: "hi", Expr: lp.Expr{{Var: "x", Coef: 1}}, Lower: -lp.Inf, Upper: 3},
		{Name: "mid", Expr: lp.Expr{{Var: "x", Coef: 1}}, Lower: 4, Upper: 4},
		{Name: "keep", Expr: lp.Expr{{Var: "x", Coef: 2}}, Lower: -lp.Inf, Upper: 20},
	} {
		require.NoError(t, p.AddConstraint(c))
	}

	return p
}

func TestRepair(t *testing.T) {
	var buf bytes.Buffer
	p := problem(t, &buf)
	s := &conflictSolver{Backend: lp.LinearBackend("fake"), groups: [][]string{{"lo", "hi"}, {"mid"}}}

	res, err := driver.Repair(context.Background(), p, s, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Rounds)
	assert.Equal(t, [][]string{{"lo", "hi"}, {"mid"}}, res.Removed)
	assert.Equal(t, []string{"lo", "hi", "mid"}, res.Flatten())
	assert.Equal(t, lp.StatusOptimal, res.Solution.Status)
	assert.Equal(t, 1, p.NumConstraints())
	assert.True(t, p.HasConstraint("keep"))
	assert.Contains(t, buf.String(), "removed irreducible infeasible subset")
}

func TestRepair_FeasibleIsUntouched(t *testing.T) {
	var buf bytes.Buffer
	p := problem(t, &buf)
	s := &conflictSolver{Backend: lp.LinearBackend("fake")}

	res, err := driver.Repair(context.Background(), p, s, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rounds)
	assert.Empty(t, res.Removed)
	assert.Equal(t, 4, p.NumConstraints())
}

func TestRepair_Exhausted(t *testing.T) {
	var buf bytes.Buffer
	p := problem(t, &buf)
	s := &conflictSolver{Backend: lp.LinearBackend("fake"), groups: [][]string{{"lo", "hi"}, {"mid"}}}

	res, err := driver.Repair(context.Background(), p, s, 1)
	require.ErrorIs(t, err, driver.ErrRepairExhausted)
	require.NotNil(t, res)
	assert.Equal(t, [][]string{{"lo", "hi"}}, res.Removed)
}

func TestRepair_Errors(t *testing.T) {
	var buf bytes.Buffer
	s := &conflictSolver{Backend: lp.LinearBackend("fake"), groups: [][]string{{"lo", "hi"}}}

	_, err := driver.Repair(context.Background(), problem(t, &buf), s, 0)
	require.ErrorIs(t, err, driver.ErrBadRounds)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = driver.Repair(ctx, problem(t, &buf), s, 3)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.solves)

	boom := errors.New("boom")
	s.iisErr = boom
	_, err = driver.Repair(context.Background(), problem(t, &buf), s, 3)
	require.ErrorIs(t, err, boom)

	// An IIS naming only unknown constraints cannot make progress.
	s = &conflictSolver{Backend: lp.LinearBackend("fake"), groups: [][]string{{"lo"}}}
	p := problem(t, &buf)
	require.NoError(t, p.RemoveConstraint("hi"))
	stuck := &staleIIS{conflictSolver: s}
	_, err = driver.Repair(context.Background(), p, stuck, 3)
	require.ErrorIs(t, err, driver.ErrEmptyIIS)
}

// staleIIS reports an IIS of constraints that no longer exist.
type staleIIS struct{ *conflictSolver }

func (s *staleIIS) IIS(context.Context, *lp.Problem) ([]string, error) {
	return []string{"gone"}, nil
}
