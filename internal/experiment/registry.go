package experiment

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/ddrfluid/internal/fluid"
)

// Scene places n particles into an empty world.
type Scene func(w *fluid.World, n int, rng *rand.Rand) error

type sceneEntry struct {
	build       Scene
	description string
}

type Registry struct {
	scenes map[string]sceneEntry
}

func NewRegistry() *Registry {
	r := &Registry{scenes: make(map[string]sceneEntry)}

	r.Register("random", "particles scattered uniformly through the box", Random)
	r.Register("dam_break", "a water column released from the left wall", DamBreak)
	r.Register("drop", "a blob falling into a shallow pool", Drop)
	r.Register("pair", "two particles 2 units apart at the centre", Pair)

	return r
}

func (r *Registry) Register(name, description string, s Scene) {
	r.scenes[name] = sceneEntry{build: s, description: description}
}

func (r *Registry) GetScene(name string) (Scene, error) {
	e, ok := r.scenes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}
	return e.build, nil
}

func (r *Registry) Describe(name string) string {
	return r.scenes[name].description
}

func (r *Registry) ListScenes() []string {
	names := make([]string, 0, len(r.scenes))
	for name := range r.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
