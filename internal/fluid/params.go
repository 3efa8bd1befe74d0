package fluid

import (
	"fmt"
	"math"
	"sort"
)

// Default solver constants. Lengths are in world units, the world spans
// WorldWidth x WorldHeight with the origin at the bottom left.
const (
	Gravity           = 9.8
	BoundaryCOR       = 0.5
	BoundaryMinDV     = 0.05
	ParticleRadius    = 1.0
	InteractionRadius = 9.0
	Stiffness         = 20.0
	StiffnessNear     = 40.0
	RestDensity       = 1.0
	ViscosityLinear   = 2.0
	ViscosityQuad     = 0.1
	CellSize          = 4 * InteractionRadius
	WorldWidth        = 100.0
	WorldHeight       = 100.0

	// Epsilon is the distance below which two particles are treated as
	// coincident and exchange no directional force.
	Epsilon = 1e-6
)

// Params holds the tunable solver constants.
type Params struct {
	Gravity           float64 `yaml:"gravity"`
	BoundaryCOR       float64 `yaml:"boundary_cor"`
	BoundaryMinDV     float64 `yaml:"boundary_min_dv"`
	ParticleRadius    float64 `yaml:"particle_radius"`
	InteractionRadius float64 `yaml:"interaction_radius"`
	Stiffness         float64 `yaml:"stiffness"`
	StiffnessNear     float64 `yaml:"stiffness_near"`
	RestDensity       float64 `yaml:"rest_density"`
	ViscosityLinear   float64 `yaml:"viscosity_linear"`
	ViscosityQuad     float64 `yaml:"viscosity_quad"`
	CellSize          float64 `yaml:"cell_size"`
	WorldWidth        float64 `yaml:"world_width"`
	WorldHeight       float64 `yaml:"world_height"`
	Options           Options `yaml:"-"`
}

func DefaultParams() Params {
	return Params{
		Gravity:           Gravity,
		BoundaryCOR:       BoundaryCOR,
		BoundaryMinDV:     BoundaryMinDV,
		ParticleRadius:    ParticleRadius,
		InteractionRadius: InteractionRadius,
		Stiffness:         Stiffness,
		StiffnessNear:     StiffnessNear,
		RestDensity:       RestDensity,
		ViscosityLinear:   ViscosityLinear,
		ViscosityQuad:     ViscosityQuad,
		CellSize:          CellSize,
		WorldWidth:        WorldWidth,
		WorldHeight:       WorldHeight,
		Options:           DefaultOptions(),
	}
}

// ReferenceParams is DefaultParams with ReferenceOptions.
func ReferenceParams() Params {
	p := DefaultParams()
	p.Options = ReferenceOptions()
	return p
}

func (p Params) Validate() error {
	fields := map[string]float64{
		"gravity":            p.Gravity,
		"boundary_cor":       p.BoundaryCOR,
		"boundary_min_dv":    p.BoundaryMinDV,
		"particle_radius":    p.ParticleRadius,
		"interaction_radius": p.InteractionRadius,
		"stiffness":          p.Stiffness,
		"stiffness_near":     p.StiffnessNear,
		"rest_density":       p.RestDensity,
		"viscosity_linear":   p.ViscosityLinear,
		"viscosity_quad":     p.ViscosityQuad,
		"cell_size":          p.CellSize,
		"world_width":        p.WorldWidth,
		"world_height":       p.WorldHeight,
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if v := fields[name]; math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParams, name)
		}
	}

	switch {
	case p.InteractionRadius <= 0:
		return fmt.Errorf("%w: interaction_radius must be positive, got %g", ErrInvalidParams, p.InteractionRadius)
	case p.CellSize <= 0:
		return fmt.Errorf("%w: cell_size must be positive, got %g", ErrInvalidParams, p.CellSize)
	case p.Options.Neighborhood == Moore && p.CellSize < p.InteractionRadius:
		return fmt.Errorf("%w: cell_size %g is smaller than interaction_radius %g", ErrInvalidParams, p.CellSize, p.InteractionRadius)
	case p.ParticleRadius < 0:
		return fmt.Errorf("%w: particle_radius must not be negative", ErrInvalidParams)
	case p.WorldWidth <= 2*p.ParticleRadius || p.WorldHeight <= 2*p.ParticleRadius:
		return fmt.Errorf("%w: world %gx%g cannot hold a particle of radius %g", ErrInvalidParams, p.WorldWidth, p.WorldHeight, p.ParticleRadius)
	case p.BoundaryCOR < 0 || p.BoundaryMinDV < 0:
		return fmt.Errorf("%w: boundary coefficients must not be negative", ErrInvalidParams)
	case p.Stiffness < 0 || p.StiffnessNear < 0:
		return fmt.Errorf("%w: stiffness must not be negative", ErrInvalidParams)
	case p.ViscosityLinear < 0 || p.ViscosityQuad < 0:
		return fmt.Errorf("%w: viscosity must not be negative", ErrInvalidParams)
	}
	return nil
}

// tunables lists the parameters exposed for live adjustment.
var tunables = map[string]func(p *Params) *float64{
	"gravity":          func(p *Params) *float64 { return &p.Gravity },
	"stiffness":        func(p *Params) *float64 { return &p.Stiffness },
	"stiffness_near":   func(p *Params) *float64 { return &p.StiffnessNear },
	"rest_density":     func(p *Params) *float64 { return &p.RestDensity },
	"viscosity_linear": func(p *Params) *float64 { return &p.ViscosityLinear },
	"viscosity_quad":   func(p *Params) *float64 { return &p.ViscosityQuad },
	"boundary_cor":     func(p *Params) *float64 { return &p.BoundaryCOR },
}

// Set assigns a tunable parameter by name without validating the result.
func (p *Params) Set(name string, value float64) error {
	field, ok := tunables[name]
	if !ok {
		return fmt.Errorf("%w: unknown parameter %q (want one of %v)", ErrInvalidParams, name, TunableNames())
	}
	*field(p) = value
	return nil
}

// TunableNames lists the parameters accepted by Set, sorted.
func TunableNames() []string {
	names := make([]string, 0, len(tunables))
	for n := range tunables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
