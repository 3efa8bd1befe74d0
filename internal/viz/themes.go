package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the live view.
type Theme struct {
	Name      string
	Fluid     lipgloss.Color
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

var (
	ThemeOcean = Theme{
		Name:      "ocean",
		Fluid:     lipgloss.Color("#00a8cc"),
		Primary:   lipgloss.Color("#ffd700"),
		Secondary: lipgloss.Color("#4488aa"),
		Warning:   lipgloss.Color("#ffcc00"),
		Error:     lipgloss.Color("#ff4444"),
	}

	ThemeLava = Theme{
		Name:      "lava",
		Fluid:     lipgloss.Color("#ff6b35"),
		Primary:   lipgloss.Color("#feca57"),
		Secondary: lipgloss.Color("#8b6b8c"),
		Warning:   lipgloss.Color("#ffc048"),
		Error:     lipgloss.Color("#ff4757"),
	}

	ThemePhosphor = Theme{
		Name:      "phosphor",
		Fluid:     lipgloss.Color("#00ff00"),
		Primary:   lipgloss.Color("#88ff88"),
		Secondary: lipgloss.Color("#005500"),
		Warning:   lipgloss.Color("#ffff00"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeInk = Theme{
		Name:      "ink",
		Fluid:     lipgloss.Color("#ffffff"),
		Primary:   lipgloss.Color("#0088ff"),
		Secondary: lipgloss.Color("#888888"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff0000"),
	}

	CurrentTheme = ThemeOcean

	Themes = []Theme{ThemeOcean, ThemeLava, ThemePhosphor, ThemeInk}
)

// GetTheme returns a theme by name, falling back to ocean.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeOcean
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
