package config

import "sort"

// Presets maps scene -> preset name -> config builder.
var Presets = map[string]map[string]func() *Config{
	"random": {
		"default": func() *Config {
			return scene("random", 100, 10)
		},
		"reference": func() *Config {
			c := scene("random", 100, 10)
			c.UseReferenceOptions()
			return c
		},
	},
	"dam_break": {
		"default": func() *Config {
			return scene("dam_break", 400, 15)
		},
		"reference": func() *Config {
			c := scene("dam_break", 400, 15)
			c.UseReferenceOptions()
			return c
		},
		"viscous": func() *Config {
			c := scene("dam_break", 400, 15)
			c.Solver.ViscosityLinear = 8.0
			c.Solver.ViscosityQuad = 0.5
			return c
		},
	},
	"drop": {
		"default": func() *Config {
			return scene("drop", 300, 10)
		},
	},
	"pair": {
		"default": func() *Config {
			c := scene("pair", 2, 2)
			c.Solver.Gravity = 0
			return c
		},
	},
}

func scene(name string, particles int, duration float64) *Config {
	c := DefaultConfig()
	c.Scene = name
	c.Particles = particles
	c.Duration = duration
	return c
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(sceneName, preset string) *Config {
	scenePresets, ok := Presets[sceneName]
	if !ok {
		return nil
	}
	build, ok := scenePresets[preset]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets(sceneName string) []string {
	scenePresets, ok := Presets[sceneName]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListScenes() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
