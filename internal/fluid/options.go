package fluid

import "fmt"

// Neighborhood selects which grid cells are scanned for neighbours.
type Neighborhood int

const (
	// Moore scans the particle's cell and its 8 neighbours.
	Moore Neighborhood = iota
	// SameCell scans only the particle's own cell. Pairs straddling a cell
	// boundary are missed.
	SameCell
)

// RebuildPolicy controls how often the grid is rebuilt within a step.
type RebuildPolicy int

const (
	// RebuildPerPass rebuilds before viscosity and again before relaxation,
	// so relaxation sees post-integration positions.
	RebuildPerPass RebuildPolicy = iota
	// RebuildPerStep builds once at the start of the step. Relaxation then
	// reads buckets that are stale by one position update.
	RebuildPerStep
)

// PairPolicy controls how relaxation visits neighbour pairs.
type PairPolicy int

const (
	// UniquePairs visits each unordered pair once using the mean of both
	// endpoints' pressures and applies all corrections after the sweep.
	UniquePairs PairPolicy = iota
	// DoubleVisit loops over every particle and corrects each neighbour in
	// place, so every pair is corrected once from each end. In the equal
	// density limit this acts as twice the stiffness of UniquePairs.
	DoubleVisit
)

// ViscosityPolicy controls which particles of a pair receive the impulse.
type ViscosityPolicy int

const (
	ViscositySymmetric ViscosityPolicy = iota
	// ViscosityLowerIndex applies the impulse to the lower indexed particle
	// only.
	ViscosityLowerIndex
)

// WallPolicy controls boundary precedence.
type WallPolicy int

const (
	// WallsPerAxis resolves x and y independently.
	WallsPerAxis WallPolicy = iota
	// WallsFirstMatch corrects at most one wall per particle per step,
	// testing left, right, bottom, top in that order.
	WallsFirstMatch
)

// Options groups the behavioural switches of the solver. The zero value
// is the default set.
type Options struct {
	Neighborhood Neighborhood
	Rebuild      RebuildPolicy
	Pairs        PairPolicy
	Viscosity    ViscosityPolicy
	Walls        WallPolicy
}

func DefaultOptions() Options { return Options{} }

// ReferenceOptions selects the reference tuning: same-cell search, one
// grid build per step, double visited pairs, one-sided viscosity and
// first-match walls.
func ReferenceOptions() Options {
	return Options{
		Neighborhood: SameCell,
		Rebuild:      RebuildPerStep,
		Pairs:        DoubleVisit,
		Viscosity:    ViscosityLowerIndex,
		Walls:        WallsFirstMatch,
	}
}

var (
	neighborhoodNames = []string{"moore", "same_cell"}
	rebuildNames      = []string{"per_pass", "per_step"}
	pairNames         = []string{"unique", "double_visit"}
	viscosityNames    = []string{"symmetric", "lower_index"}
	wallNames         = []string{"per_axis", "first_match"}
)

func (n Neighborhood) String() string    { return optionName(neighborhoodNames, int(n)) }
func (r RebuildPolicy) String() string   { return optionName(rebuildNames, int(r)) }
func (p PairPolicy) String() string      { return optionName(pairNames, int(p)) }
func (v ViscosityPolicy) String() string { return optionName(viscosityNames, int(v)) }
func (w WallPolicy) String() string      { return optionName(wallNames, int(w)) }

func ParseNeighborhood(s string) (Neighborhood, error) {
	return parseOption[Neighborhood]("neighborhood", s, neighborhoodNames)
}

func ParseRebuildPolicy(s string) (RebuildPolicy, error) {
	return parseOption[RebuildPolicy]("rebuild policy", s, rebuildNames)
}

func ParsePairPolicy(s string) (PairPolicy, error) {
	return parseOption[PairPolicy]("pair policy", s, pairNames)
}

func ParseViscosityPolicy(s string) (ViscosityPolicy, error) {
	return parseOption[ViscosityPolicy]("viscosity policy", s, viscosityNames)
}

func ParseWallPolicy(s string) (WallPolicy, error) {
	return parseOption[WallPolicy]("wall policy", s, wallNames)
}

func optionName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

// parseOption maps "" to the zero value so partially filled configs keep
// the defaults.
func parseOption[T ~int](kind, s string, names []string) (T, error) {
	if s == "" {
		return 0, nil
	}
	for i, name := range names {
		if name == s {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown %s %q (want one of %v)", ErrInvalidParams, kind, s, names)
}
