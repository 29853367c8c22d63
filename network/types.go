// Package network defines the base stoichiometric network consumed by the
// thermodynamic model: metabolites, reactions and their stoichiometry.
//
// All APIs are safe for concurrent use; the collections are guarded by a
// single sync.RWMutex and every mutation bumps a version counter that
// downstream caches use as their invalidation trigger.
//
// Errors:
//
//	ErrEmptyID             - metabolite or reaction ID is the empty string.
//	ErrMetaboliteNotFound  - requested metabolite does not exist.
//	ErrReactionNotFound    - requested reaction does not exist.
//	ErrDuplicateMetabolite - metabolite ID already registered.
//	ErrDuplicateReaction   - reaction ID already registered.
//	ErrBadBounds           - reaction lower bound exceeds upper bound.
//	ErrZeroCoefficient     - stoichiometric coefficient is zero or not finite.
package network

import (
	"errors"
	"sync"
)

// Sentinel errors for network operations.
var (
	// ErrEmptyID indicates that an ID is empty.
	ErrEmptyID = errors.New("network: empty id")

	// ErrMetaboliteNotFound indicates an operation referenced a non-existent metabolite.
	ErrMetaboliteNotFound = errors.New("network: metabolite not found")

	// ErrReactionNotFound indicates an operation referenced a non-existent reaction.
	ErrReactionNotFound = errors.New("network: reaction not found")

	// ErrDuplicateMetabolite indicates a metabolite ID is already registered.
	ErrDuplicateMetabolite = errors.New("network: duplicate metabolite")

	// ErrDuplicateReaction indicates a reaction ID is already registered.
	ErrDuplicateReaction = errors.New("network: duplicate reaction")

	// ErrBadBounds indicates Lower > Upper or a NaN bound.
	ErrBadBounds = errors.New("network: lower bound exceeds upper bound")

	// ErrZeroCoefficient indicates a zero, NaN or infinite stoichiometric coefficient.
	ErrZeroCoefficient = errors.New("network: invalid stoichiometric coefficient")
)

// Default flux bounds applied when a reaction is added with both bounds zero.
const (
	DefaultLowerBound = -1000.0
	DefaultUpperBound = 1000.0
)

// Metabolite is one chemical species instance in one compartment.
//
// The same chemical may appear in several compartments as distinct
// Metabolites; an IdentifierMap ties them to one chemical identifier.
type Metabolite struct {
	// ID is the model-local identifier, e.g. "atp_c".
	ID string

	// Name is a free-form label.
	Name string

	// Compartment is the compartment ID, e.g. "c" or "e".
	Compartment string

	// Charge is the net charge of the predominant species.
	Charge float64

	// Hydrogens is the number of hydrogen atoms of the predominant species.
	Hydrogens float64
}

// Term is one stoichiometric entry of a reaction. Negative coefficients are
// substrates, positive ones products.
type Term struct {
	Metabolite  string
	Coefficient float64
}

// Reaction is a stoichiometric transformation with flux bounds.
type Reaction struct {
	// ID is the model-local identifier.
	ID string

	// Terms lists the stoichiometry in declaration order.
	Terms []Term

	// Lower and Upper bound the net flux.
	Lower, Upper float64
}

// Coefficient returns the net coefficient of metID (0 if absent).
func (r Reaction) Coefficient(metID string) float64 {
	var s float64
	for _, t := range r.Terms {
		if t.Metabolite == metID {
			s += t.Coefficient
		}
	}

	return s
}

// Contains reports whether metID takes part in the reaction.
func (r Reaction) Contains(metID string) bool {
	for _, t := range r.Terms {
		if t.Metabolite == metID {
			return true
		}
	}

	return false
}

// IsBoundary reports whether the reaction has a single participant
// (exchange, sink or demand).
func (r Reaction) IsBoundary() bool { return len(r.Terms) == 1 }

// Option configures a Network before creation.
type Option func(n *Network)

// WithDefaultBounds sets the bounds used for reactions added with
// Lower == Upper == 0.
func WithDefaultBounds(lower, upper float64) Option {
	return func(n *Network) {
		n.defaultLower = lower
		n.defaultUpper = upper
	}
}

// Network is the in-memory stoichiometric model.
//
// Metabolites and reactions keep their insertion order; every enumeration
// follows it so downstream matrices are reproducible.
type Network struct {
	mu sync.RWMutex

	defaultLower float64
	defaultUpper float64

	metabolites map[string]*Metabolite
	metOrder    []string
	reactions   map[string]*Reaction
	rxnOrder    []string

	// usage[metID][rxnID] = struct{}{}
	usage map[string]map[string]struct{}

	version uint64
}

// New creates an empty Network.
// Complexity: O(1).
func New(opts ...Option) *Network {
	n := &Network{
		defaultLower: DefaultLowerBound,
		defaultUpper: DefaultUpperBound,
		metabolites:  make(map[string]*Metabolite),
		reactions:    make(map[string]*Reaction),
		usage:        make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}

	return n
}
