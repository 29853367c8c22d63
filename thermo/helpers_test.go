package thermo_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/katalvlaran/tfa/lp"
	"github.com/katalvlaran/tfa/network"
	"github.com/stretchr/testify/require"
)

// discard is a logger that drops everything.
func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// capture returns a warn-level logger writing into buf.
func capture(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// chain builds a linear pathway m0 -> m1 -> ... in compartment "c", one
// reaction R1..Rk per step.
func chain(t *testing.T, mets ...string) *network.Network {
	t.Helper()
	n := network.New()
	for _, id := range mets {
		require.NoError(t, n.AddMetabolite(network.Metabolite{ID: id, Compartment: "c"}))
	}
	for i := 1; i < len(mets); i++ {
		require.NoError(t, n.AddReaction(network.Reaction{
			ID: "R" + string(rune('0'+i)),
			Terms: []network.Term{
				{Metabolite: mets[i-1], Coefficient: -1},
				{Metabolite: mets[i], Coefficient: 1},
			},
		}))
	}

	return n
}

// fakeSolver records the last problem it was asked to solve.
type fakeSolver struct {
	lp.Backend
	last *lp.Problem
}

func newFakeSolver(b lp.Backend) *fakeSolver { return &fakeSolver{Backend: b} }

func (f *fakeSolver) Solve(_ context.Context, p *lp.Problem) (*lp.Solution, error) {
	f.last = p
	return &lp.Solution{Status: lp.StatusOptimal, Values: map[string]float64{}}, nil
}

func constraintNames(p *lp.Problem) []string {
	cs := p.Constraints()
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}

	return out
}

func varNames(p *lp.Problem) []string {
	vs := p.Variables()
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Name
	}

	return out
}
