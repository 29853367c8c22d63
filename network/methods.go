// File: methods.go
// Role: metabolite & reaction lifecycle and queries.
//
// Determinism:
//   - Metabolites(), Reactions() and ReactionsOf() follow insertion order.
//
// Concurrency:
//   - Every method takes n.mu; mutations bump n.version under the write lock.
package network

import (
	"fmt"
	"math"

	"github.com/katalvlaran/tfa/matrix"
)

// AddMetabolite registers a metabolite.
// Returns ErrEmptyID or ErrDuplicateMetabolite.
func (n *Network) AddMetabolite(m Metabolite) error {
	if m.ID == "" {
		return ErrEmptyID
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.metabolites[m.ID]; ok {
		return fmt.Errorf("AddMetabolite(%q): %w", m.ID, ErrDuplicateMetabolite)
	}
	cp := m
	n.metabolites[m.ID] = &cp
	n.metOrder = append(n.metOrder, m.ID)
	n.usage[m.ID] = make(map[string]struct{})
	n.version++

	return nil
}

// AddReaction registers a reaction. Every participant must already exist.
// Repeated participants are merged into one term (coefficients summed, first
// position kept). Reactions with Lower == Upper == 0 receive the network's
// default bounds.
//
// Errors: ErrEmptyID, ErrDuplicateReaction, ErrMetaboliteNotFound,
// ErrZeroCoefficient, ErrBadBounds.
func (n *Network) AddReaction(r Reaction) error {
	if r.ID == "" {
		return ErrEmptyID
	}
	if math.IsNaN(r.Lower) || math.IsNaN(r.Upper) || r.Lower > r.Upper {
		return fmt.Errorf("AddReaction(%q): [%g, %g]: %w", r.ID, r.Lower, r.Upper, ErrBadBounds)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.reactions[r.ID]; ok {
		return fmt.Errorf("AddReaction(%q): %w", r.ID, ErrDuplicateReaction)
	}

	terms := make([]Term, 0, len(r.Terms))
	pos := make(map[string]int, len(r.Terms))
	for _, t := range r.Terms {
		if _, ok := n.metabolites[t.Metabolite]; !ok {
			return fmt.Errorf("AddReaction(%q): %q: %w", r.ID, t.Metabolite, ErrMetaboliteNotFound)
		}
		if t.Coefficient == 0 || math.IsNaN(t.Coefficient) || math.IsInf(t.Coefficient, 0) {
			return fmt.Errorf("AddReaction(%q): %q: %w", r.ID, t.Metabolite, ErrZeroCoefficient)
		}
		if i, ok := pos[t.Metabolite]; ok {
			terms[i].Coefficient += t.Coefficient
			continue
		}
		pos[t.Metabolite] = len(terms)
		terms = append(terms, t)
	}

	cp := Reaction{ID: r.ID, Terms: terms, Lower: r.Lower, Upper: r.Upper}
	if cp.Lower == 0 && cp.Upper == 0 {
		cp.Lower, cp.Upper = n.defaultLower, n.defaultUpper
	}
	n.reactions[r.ID] = &cp
	n.rxnOrder = append(n.rxnOrder, r.ID)
	for _, t := range terms {
		n.usage[t.Metabolite][r.ID] = struct{}{}
	}
	n.version++

	return nil
}

// RemoveReaction deletes a reaction. Returns ErrReactionNotFound.
func (n *Network) RemoveReaction(id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	r, ok := n.reactions[id]
	if !ok {
		return fmt.Errorf("RemoveReaction(%q): %w", id, ErrReactionNotFound)
	}
	for _, t := range r.Terms {
		delete(n.usage[t.Metabolite], id)
	}
	delete(n.reactions, id)
	for i, rid := range n.rxnOrder {
		if rid == id {
			n.rxnOrder = append(n.rxnOrder[:i], n.rxnOrder[i+1:]...)
			break
		}
	}
	n.version++

	return nil
}

// SetBounds updates the flux bounds of a reaction.
func (n *Network) SetBounds(id string, lower, upper float64) error {
	if math.IsNaN(lower) || math.IsNaN(upper) || lower > upper {
		return fmt.Errorf("SetBounds(%q): [%g, %g]: %w", id, lower, upper, ErrBadBounds)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	r, ok := n.reactions[id]
	if !ok {
		return fmt.Errorf("SetBounds(%q): %w", id, ErrReactionNotFound)
	}
	r.Lower, r.Upper = lower, upper
	n.version++

	return nil
}

// Metabolite returns a copy of the metabolite with the given ID.
func (n *Network) Metabolite(id string) (Metabolite, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	m, ok := n.metabolites[id]
	if !ok {
		return Metabolite{}, fmt.Errorf("Metabolite(%q): %w", id, ErrMetaboliteNotFound)
	}

	return *m, nil
}

// Reaction returns a copy of the reaction with the given ID.
func (n *Network) Reaction(id string) (Reaction, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	r, ok := n.reactions[id]
	if !ok {
		return Reaction{}, fmt.Errorf("Reaction(%q): %w", id, ErrReactionNotFound)
	}

	return copyReaction(r), nil
}

// Metabolites returns copies of all metabolites in insertion order.
func (n *Network) Metabolites() []Metabolite {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]Metabolite, len(n.metOrder))
	for i, id := range n.metOrder {
		out[i] = *n.metabolites[id]
	}

	return out
}

// Reactions returns copies of all reactions in insertion order.
func (n *Network) Reactions() []Reaction {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]Reaction, len(n.rxnOrder))
	for i, id := range n.rxnOrder {
		out[i] = copyReaction(n.reactions[id])
	}

	return out
}

// ReactionsOf returns the IDs of reactions that involve metID, in reaction
// insertion order.
func (n *Network) ReactionsOf(metID string) ([]string, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	used, ok := n.usage[metID]
	if !ok {
		return nil, fmt.Errorf("ReactionsOf(%q): %w", metID, ErrMetaboliteNotFound)
	}
	out := make([]string, 0, len(used))
	for _, rid := range n.rxnOrder {
		if _, hit := used[rid]; hit {
			out = append(out, rid)
		}
	}

	return out, nil
}

// Version returns the mutation counter. It changes on every successful
// mutation and never otherwise.
func (n *Network) Version() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.version
}

// StoichiometricMatrix returns S (metabolites × reactions) in insertion order.
// Complexity: O(M·R) memory, O(nnz) fill.
func (n *Network) StoichiometricMatrix() (*matrix.Dense, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	s, err := matrix.NewDense(len(n.metOrder), len(n.rxnOrder))
	if err != nil {
		return nil, err
	}
	row := make(map[string]int, len(n.metOrder))
	for i, id := range n.metOrder {
		row[id] = i
	}
	for j, rid := range n.rxnOrder {
		for _, t := range n.reactions[rid].Terms {
			if err = s.Set(row[t.Metabolite], j, t.Coefficient); err != nil {
				return nil, err
			}
		}
	}

	return s, nil
}

func copyReaction(r *Reaction) Reaction {
	terms := make([]Term, len(r.Terms))
	copy(terms, r.Terms)

	return Reaction{ID: r.ID, Terms: terms, Lower: r.Lower, Upper: r.Upper}
}
