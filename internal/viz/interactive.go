package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ddrfluid/internal/config"
	"github.com/san-kum/ddrfluid/internal/dynamo"
	"github.com/san-kum/ddrfluid/internal/experiment"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	keyCap  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

type entry struct{ scene, preset string }

// field is one editable value on the config screen.
type field struct {
	name string
	get  func(c *config.Config) float64
	set  func(c *config.Config, v float64)
}

var fields = []field{
	{"particles", func(c *config.Config) float64 { return float64(c.Particles) }, func(c *config.Config, v float64) { c.Particles = int(v) }},
	{"seed", func(c *config.Config) float64 { return float64(c.Seed) }, func(c *config.Config, v float64) { c.Seed = int64(v) }},
	{"max_dt", func(c *config.Config) float64 { return c.MaxDt }, func(c *config.Config, v float64) { c.MaxDt = v }},
	{"gravity", func(c *config.Config) float64 { return c.Solver.Gravity }, func(c *config.Config, v float64) { c.Solver.Gravity = v }},
	{"stiffness", func(c *config.Config) float64 { return c.Solver.Stiffness }, func(c *config.Config, v float64) { c.Solver.Stiffness = v }},
	{"rest_density", func(c *config.Config) float64 { return c.Solver.RestDensity }, func(c *config.Config, v float64) { c.Solver.RestDensity = v }},
	{"viscosity_linear", func(c *config.Config) float64 { return c.Solver.ViscosityLinear }, func(c *config.Config, v float64) { c.Solver.ViscosityLinear = v }},
}

type model struct {
	state, cursor int
	entries       []entry
	registry      *experiment.Registry
	cfg           *config.Config
	fieldCursor   int
	editing       bool
	editBuf       string
	err           error
	liveModel     Model
}

// NewInteractiveApp lists every scene preset, lets the user adjust a few
// values and then opens the live view.
func NewInteractiveApp(registry *experiment.Registry) *model {
	m := &model{registry: registry}
	for _, scene := range config.ListScenes() {
		for _, preset := range config.ListPresets(scene) {
			m.entries = append(m.entries, entry{scene, preset})
		}
	}
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(key)
	}
	if m.state == stateSim {
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		e := m.entries[m.cursor]
		m.cfg = config.GetPreset(e.scene, e.preset)
		m.state, m.fieldCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	f := fields[m.fieldCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				f.set(m.cfg, v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(fields)-1 {
			m.fieldCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(f.get(m.cfg), 'g', -1, 64)
	case "s":
		return m.start()
	}
	return m, nil
}

func (m model) start() (model, tea.Cmd) {
	live, err := NewModel(BuilderFor(m.cfg, m.registry), LiveConfigFor(m.cfg))
	if err != nil {
		m.err = err
		return m, nil
	}
	m.liveModel, m.state = live, stateSim
	return m, m.liveModel.Init()
}

// BuilderFor returns a Builder that rebuilds cfg's scene from its seed.
func BuilderFor(cfg *config.Config, registry *experiment.Registry) Builder {
	return func() (*dynamo.Simulator, error) {
		w, err := experiment.BuildWorld(cfg, registry, cfg.Seed)
		if err != nil {
			return nil, err
		}
		dc, err := cfg.DriverConfig()
		if err != nil {
			return nil, err
		}
		s := dynamo.New(w)
		if err := s.SetPolicy(dc.Policy, dc.MaxDt); err != nil {
			return nil, err
		}
		return s, nil
	}
}

func LiveConfigFor(cfg *config.Config) LiveConfig {
	return LiveConfig{
		Title:   cfg.Scene,
		FrameDt: cfg.Dt,
		WorldW:  cfg.Solver.WorldWidth,
		WorldH:  cfg.Solver.WorldHeight,
		Gravity: cfg.Solver.Gravity,
	}
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyCap.Render(pairs[i]) + dim.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + GradientText("DDRFLUID", "#00cccc", "#ff88ff") + "\n    " + Subtle.Render("double density relaxation") + "\n    " + Subtle.Render("─────────────────────────") + "\n\n")
	for i, e := range m.entries {
		desc := m.registry.Describe(e.scene)
		if len(desc) > 36 {
			desc = desc[:33] + "..."
		}
		name := fmt.Sprintf("%-20s", e.scene+"/"+e.preset)
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cyan.Render("▸"), white.Render(name), magenta.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", dim.Render(name), dimmer.Render(desc)))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + cyan.Render(strings.ToUpper(m.cfg.Scene)) + "\n    " + Subtle.Render(m.registry.Describe(m.cfg.Scene)) + "\n    " + Subtle.Render("─────────────────────────") + "\n\n")
	for i, f := range fields {
		valStr := fmt.Sprintf("%10.4g", f.get(m.cfg))
		if m.editing && i == m.fieldCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cyan.Render("▸"), white.Render(fmt.Sprintf("%-16s", f.name)), magenta.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n", dim.Render(fmt.Sprintf("%-16s", f.name)), dimmer.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "enter", "edit", "s", "start", "esc", "back") + "\n")
	return b.String()
}

func RunInteractive(registry *experiment.Registry) error {
	_, err := tea.NewProgram(NewInteractiveApp(registry), tea.WithAltScreen()).Run()
	return err
}
