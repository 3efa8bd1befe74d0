package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ddrfluid/internal/dynamo"
	"github.com/san-kum/ddrfluid/internal/fluid"
	"github.com/san-kum/ddrfluid/internal/metrics"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
)

// Snapshot stores one frame for replay.
type Snapshot struct {
	Particles []fluid.ParticleState
	Time      float64
	Energy    float64
}

var (
	canvasStyle      = lipgloss.NewStyle().Padding(1, 2)
	statsStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// RenderMode selects how particles are drawn.
type RenderMode int

const (
	RenderDots RenderMode = iota
	RenderMetaballs
)

func (r RenderMode) String() string {
	if r == RenderMetaballs {
		return "metaballs"
	}
	return "dots"
}

// Builder returns a driver over a freshly populated world. The live view
// calls it once at start and again on every reset.
type Builder func() (*dynamo.Simulator, error)

type LiveConfig struct {
	Title          string
	FrameDt        float64
	WorldW, WorldH float64
	Gravity        float64
	Mode           RenderMode
	GIFPath        string
}

// Model contains simulation state, visualization buffers, and UI context.
type Model struct {
	build         Builder
	sim           *dynamo.Simulator
	cfg           LiveConfig
	particles     []fluid.ParticleState
	packed        []float32
	canvas        *Canvas
	mode          RenderMode
	running       bool
	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
	energyHistory []float64
	history       []Snapshot
	playHead      int
	recording     bool
	frames        []*image.Paletted
	showHelp      bool
	lastTick      time.Time
	fps           float64
	realTime      float64
	status        string
	err           error
}

// NewModel builds the world and renders it without stepping.
func NewModel(build Builder, cfg LiveConfig) (Model, error) {
	if cfg.FrameDt <= 0 {
		cfg.FrameDt = 1.0 / 60
	}
	if cfg.GIFPath == "" {
		cfg.GIFPath = "simulation.gif"
	}
	m := Model{
		build:         build,
		cfg:           cfg,
		canvas:        NewCanvas(width, height),
		mode:          cfg.Mode,
		running:       true,
		params:        make(map[string]float64),
		initialParams: make(map[string]float64),
		energyHistory: make([]float64, 0, historyCapacity),
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
	}
	if err := m.restart(); err != nil {
		return Model{}, err
	}

	for k, v := range m.params {
		m.initialParams[k] = v
		m.paramKeys = append(m.paramKeys, k)
	}
	sort.Strings(m.paramKeys)
	return m, nil
}

// restart rebuilds the world and takes the zero-length first frame.
func (m *Model) restart() error {
	sim, err := m.build()
	if err != nil {
		return err
	}
	if _, err := sim.Advance(0); err != nil {
		return err
	}
	m.sim = sim
	if c, ok := sim.System().(dynamo.Configurable); ok {
		for k, v := range c.GetParams() {
			m.params[k] = v
		}
	}
	m.particles = sim.System().Snapshot(m.particles)
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "m":
			m.mode = (m.mode + 1) % 2
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			names := ThemeNames()
			for i, name := range names {
				if name == CurrentTheme.Name {
					SetTheme(names[(i+1)%len(names)])
					break
				}
			}
		}
	case TickMsg:
		now := time.Time(msg)
		if !m.lastTick.IsZero() {
			m.measure(now.Sub(m.lastTick))
		}
		m.lastTick = now

		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

// measure updates the smoothed frame rate and the ratio of simulated to
// wall-clock time.
func (m *Model) measure(elapsed time.Duration) {
	if elapsed <= 0 {
		return
	}
	secs := elapsed.Seconds()
	fps := 1 / secs
	if m.fps == 0 {
		m.fps = fps
	} else {
		m.fps = 0.9*m.fps + 0.1*fps
	}
	if m.running && m.playHead == -1 {
		m.realTime = m.cfg.FrameDt / secs
	} else {
		m.realTime = 0
	}
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	newVal := m.params[key] * factor
	c, ok := m.sim.System().(dynamo.Configurable)
	if !ok {
		return
	}
	if err := c.SetParam(key, newVal); err != nil {
		m.status = err.Error()
		return
	}
	m.params[key] = newVal
}

// step advances the world by one frame.
func (m *Model) step() {
	if m.err != nil {
		return
	}
	if _, err := m.sim.Advance(m.cfg.FrameDt); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.particles = m.sim.System().Snapshot(m.particles)

	energy := metrics.Kinetic(m.particles) + metrics.Potential(m.particles, m.gravity())
	m.energyHistory = append(m.energyHistory, energy)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}

	snap := Snapshot{
		Particles: append([]fluid.ParticleState(nil), m.particles...),
		Time:      m.sim.Time(),
		Energy:    energy,
	}
	m.history = append(m.history, snap)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func (m *Model) gravity() float64 {
	if g, ok := m.params["gravity"]; ok {
		return g
	}
	return m.cfg.Gravity
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset rebuilds the scene and restores the initial parameters.
func (m *Model) reset() {
	m.energyHistory = m.energyHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.err = nil
	m.status = ""
	if err := m.restart(); err != nil {
		m.err = err
		return
	}
	if c, ok := m.sim.System().(dynamo.Configurable); ok {
		for k, v := range m.initialParams {
			m.params[k] = v
			_ = c.SetParam(k, v)
		}
	}
}

// visible returns the frame being shown: live or replayed.
func (m *Model) visible() ([]fluid.ParticleState, float64) {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		snap := m.history[m.playHead]
		return snap.Particles, snap.Time
	}
	return m.particles, m.sim.Time()
}

func (m *Model) draw() {
	particles, _ := m.visible()
	m.canvas.Clear()
	m.canvas.DrawBox()
	switch m.mode {
	case RenderMetaballs:
		m.packed = PackPositions(particles, m.cfg.WorldW, m.cfg.WorldH, m.packed)
		m.canvas.DrawMetaballs(m.packed, MetaballRadius, MetaballThreshold)
	default:
		m.canvas.DrawParticles(particles, m.cfg.WorldW, m.cfg.WorldH)
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	particles, t := m.visible()
	canvasView := canvasStyle.Foreground(CurrentTheme.Fluid).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Foreground(CurrentTheme.Secondary).Render(strings.ToUpper(m.cfg.Title)) + "\n")
	s.WriteString(m.statusLine() + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", t)) + "\n")
	s.WriteString(labelStyle.Render("Particles") + valueStyle.Render(fmt.Sprintf("%d", len(particles))) + "\n")
	s.WriteString(labelStyle.Render("Steps") + valueStyle.Render(fmt.Sprintf("%d", m.sim.Steps())) + "\n")
	s.WriteString(labelStyle.Render("FPS") + valueStyle.Render(fmt.Sprintf("%.0f  %.2fx real time", m.fps, m.realTime)) + "\n")
	s.WriteString(labelStyle.Render("Render") + valueStyle.Render(m.mode.String()) + "\n")

	s.WriteString("\nPARAMETERS\n")
	if len(m.paramKeys) > 0 {
		for i, k := range m.paramKeys {
			val, initial := m.params[k], m.initialParams[k]
			if initial == 0 {
				initial = 1e-6
			}
			barWidth, ratio := 10, val/(2.0*initial)
			if ratio > 1 {
				ratio = 1
			} else if ratio < 0 {
				ratio = 0
			}
			filled := int(ratio * float64(barWidth))
			bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled) + "]"
			line := fmt.Sprintf("%-16s %s %.2f", k, bar, val)
			if i == m.selected {
				s.WriteString(activeParamStyle.Foreground(CurrentTheme.Primary).Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + labelStyle.Width(0).Render(line) + "\n")
			}
		}
	} else {
		s.WriteString(labelStyle.Render("  (none)") + "\n")
	}
	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\nM:Render G:Record ?:Help\n[ ]:Time-Travel ↑↓:Tune"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset scene              ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  [        - Rewind (time travel)     ║
║  ]        - Forward (time travel)    ║
║  M        - Dots / metaballs         ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func (m Model) statusLine() string {
	theme := CurrentTheme
	switch {
	case m.err != nil:
		return lipgloss.NewStyle().Foreground(theme.Error).Render("ERROR: " + m.err.Error())
	case m.status != "":
		return lipgloss.NewStyle().Foreground(theme.Warning).Render(m.status)
	case m.recording:
		return StatusRecording.Render("● REC")
	}

	latest := 0.0
	if len(m.history) > 0 {
		latest = m.history[len(m.history)-1].Time
	}
	if m.playHead != -1 && m.playHead < len(m.history) {
		offset := m.history[m.playHead].Time - latest
		if m.running {
			return StatusPaused.Render(fmt.Sprintf("REPLAYING (%.1fs)", offset))
		}
		return StatusPaused.Render(fmt.Sprintf("REPLAY PAUSED (%.1fs)", offset))
	}
	if !m.running {
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		return
	}
	if err := m.saveGIF(); err != nil {
		m.status = "gif: " + err.Error()
	} else if len(m.frames) > 0 {
		m.status = fmt.Sprintf("saved %d frames to %s", len(m.frames), m.cfg.GIFPath)
	}
	m.recording = false
	m.frames = nil
}

// captureFrame rasterises the braille canvas, one dot per 4x4 block.
func (m *Model) captureFrame() {
	m.frames = append(m.frames, CanvasImage(m.canvas, 4))
}

func CanvasImage(c *Canvas, dot int) *image.Paletted {
	cw, ch := c.PixelSize()
	img := image.NewPaletted(image.Rect(0, 0, cw*dot, ch*dot), color.Palette{color.Black, color.White})
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dot; py++ {
				for px := 0; px < dot; px++ {
					img.SetColorIndex(x*dot+px, y*dot+py, 1)
				}
			}
		}
	}
	return img
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(m.cfg.GIFPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// RunLive starts the live viewer on the alternate screen.
func RunLive(build Builder, cfg LiveConfig) error {
	m, err := NewModel(build, cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
