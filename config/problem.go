package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/tfa/lp"
	"github.com/katalvlaran/tfa/network"
	"github.com/katalvlaran/tfa/thermo"
)

// Metabolite describes one network metabolite.
type Metabolite struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name,omitempty" json:"name,omitempty"`
	Compartment string  `yaml:"compartment" json:"compartment"`
	Charge      float64 `yaml:"charge,omitempty" json:"charge,omitempty"`
	Hydrogens   float64 `yaml:"hydrogens,omitempty" json:"hydrogens,omitempty"`
}

// Term is one stoichiometric entry.
type Term struct {
	Metabolite  string  `yaml:"metabolite" json:"metabolite"`
	Coefficient float64 `yaml:"coefficient" json:"coefficient"`
}

// Reaction describes one network reaction. Omitted bounds take the network
// defaults.
type Reaction struct {
	ID    string   `yaml:"id" json:"id"`
	Lower *float64 `yaml:"lower,omitempty" json:"lower,omitempty"`
	Upper *float64 `yaml:"upper,omitempty" json:"upper,omitempty"`
	Terms []Term   `yaml:"terms" json:"terms"`
}

// Estimate is a formation-energy mean and standard deviation (kJ/mol).
type Estimate struct {
	Mean   float64 `yaml:"mean" json:"mean"`
	StdDev float64 `yaml:"sd" json:"sd"`
}

// Correlation sets corr(A, B) = Rho.
type Correlation struct {
	A   string  `yaml:"a" json:"a"`
	B   string  `yaml:"b" json:"b"`
	Rho float64 `yaml:"rho" json:"rho"`
}

// Ratio bounds lnc_A − lnc_B to [Min, Max].
type Ratio struct {
	A   string  `yaml:"a" json:"a"`
	B   string  `yaml:"b" json:"b"`
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Objective selects the reaction whose net flux is optimized.
type Objective struct {
	Reaction string `yaml:"reaction" json:"reaction"`
	Sense    string `yaml:"sense,omitempty" json:"sense,omitempty"`
}

// Problem is a self-contained model description: network, identifier map,
// estimates and model-level constraints.
type Problem struct {
	Metabolites  []Metabolite        `yaml:"metabolites" json:"metabolites"`
	Reactions    []Reaction          `yaml:"reactions" json:"reactions"`
	Identifiers  map[string]string   `yaml:"identifiers,omitempty" json:"identifiers,omitempty"`
	Estimates    map[string]Estimate `yaml:"estimates" json:"estimates"`
	Correlations []Correlation       `yaml:"correlations,omitempty" json:"correlations,omitempty"`
	Exclude      []string            `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	Ratios       []Ratio             `yaml:"ratios,omitempty" json:"ratios,omitempty"`
	Objective    *Objective          `yaml:"objective,omitempty" json:"objective,omitempty"`
}

// ParseProblem decodes and validates a problem description.
func ParseProblem(data []byte) (*Problem, error) {
	var p Problem
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("config: parse problem: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// LoadProblem reads and parses the problem file at path.
func LoadProblem(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return ParseProblem(data)
}

// Validate checks the parts the network does not check itself.
func (p *Problem) Validate() error {
	if len(p.Metabolites) == 0 {
		return invalid("metabolites must not be empty")
	}
	for id, e := range p.Estimates {
		if e.StdDev < 0 {
			return invalid("estimates.%s.sd must be >= 0, got %g", id, e.StdDev)
		}
	}
	for i, c := range p.Correlations {
		if c.Rho < -1 || c.Rho > 1 {
			return invalid("correlations[%d].rho must be between -1 and 1, got %g", i, c.Rho)
		}
	}
	for i, r := range p.Ratios {
		if r.Min > r.Max {
			return invalid("ratios[%d].min (%g) should be <= max (%g)", i, r.Min, r.Max)
		}
	}
	if p.Objective != nil {
		if _, err := p.Objective.sense(); err != nil {
			return err
		}
	}

	return nil
}

func (o *Objective) sense() (lp.Sense, error) {
	switch strings.ToLower(o.Sense) {
	case "", "max", "maximize":
		return lp.Maximize, nil
	case "min", "minimize":
		return lp.Minimize, nil
	default:
		return lp.Maximize, invalid("objective.sense must be max or min, got %q", o.Sense)
	}
}

// Network builds the stoichiometric network.
func (p *Problem) Network() (*network.Network, error) {
	net := network.New()
	for _, m := range p.Metabolites {
		err := net.AddMetabolite(network.Metabolite{
			ID:          m.ID,
			Name:        m.Name,
			Compartment: m.Compartment,
			Charge:      m.Charge,
			Hydrogens:   m.Hydrogens,
		})
		if err != nil {
			return nil, err
		}
	}
	for _, r := range p.Reactions {
		rxn := network.Reaction{ID: r.ID, Terms: make([]network.Term, len(r.Terms))}
		for i, t := range r.Terms {
			rxn.Terms[i] = network.Term{Metabolite: t.Metabolite, Coefficient: t.Coefficient}
		}
		if r.Lower != nil {
			rxn.Lower = *r.Lower
		} else {
			rxn.Lower = network.DefaultLowerBound
		}
		if r.Upper != nil {
			rxn.Upper = *r.Upper
		} else {
			rxn.Upper = network.DefaultUpperBound
		}
		if err := net.AddReaction(rxn); err != nil {
			return nil, err
		}
		// [0, 0] means default bounds to AddReaction; a blocked reaction
		// is set afterwards.
		if r.Lower != nil && r.Upper != nil && rxn.Lower == 0 && rxn.Upper == 0 {
			if err := net.SetBounds(r.ID, 0, 0); err != nil {
				return nil, err
			}
		}
	}

	return net, nil
}

// IdentifierMap returns the metabolite → identifier map.
func (p *Problem) IdentifierMap() network.IdentifierMap {
	return network.IdentifierMap(p.Identifiers)
}

// Estimator returns static estimates for every listed identifier.
func (p *Problem) Estimator() *thermo.StaticEstimates {
	est := thermo.NewStaticEstimates()
	for id, e := range p.Estimates {
		est.Set(id, e.Mean, e.StdDev)
	}
	for _, c := range p.Correlations {
		est.SetCorrelation(c.A, c.B, c.Rho)
	}

	return est
}

// Build assembles the thermodynamic model: network, estimates, cfg options,
// exclusions, ratios and objective.
func (p *Problem) Build(cfg *Config, logger *slog.Logger) (*thermo.Model, *network.Network, error) {
	if cfg == nil {
		cfg = Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	net, err := p.Network()
	if err != nil {
		return nil, nil, fmt.Errorf("config: network: %w", err)
	}
	opts := append(cfg.ModelOptions(), thermo.WithLogger(logger), thermo.WithExclude(p.Exclude...))
	m, err := thermo.New(net, p.IdentifierMap(), p.Estimator(), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("config: model: %w", err)
	}
	for _, r := range p.Ratios {
		if err = m.ConcentrationRatio(r.A, r.B, r.Min, r.Max); err != nil {
			return nil, nil, fmt.Errorf("config: ratio: %w", err)
		}
	}
	if p.Objective != nil {
		sense, _ := p.Objective.sense()
		if err = m.SetObjective(p.Objective.Reaction, sense); err != nil {
			return nil, nil, fmt.Errorf("config: objective: %w", err)
		}
	}

	return m, net, nil
}
