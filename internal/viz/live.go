package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/sim"
)

const (
	canvasWidth     = 80
	canvasHeight    = 24
	historyCapacity = 300
	eventLines      = 8
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(48)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// lastLine keeps the most recent engine log message for the status panel.
type lastLine struct{ msg string }

func (l *lastLine) Printf(format string, args ...any) {
	l.msg = fmt.Sprintf(format, args...)
}

// Model is the bubbletea model of the live view. It owns a scene built from
// cfg and steps it in real time.
type Model struct {
	cfg   *config.Config
	sc    *scene.Scene
	dt    float64
	fps   int
	speed int

	canvas *Canvas
	proj   Projection
	view   Viewport

	running  bool
	showHelp bool
	err      error
	log      *lastLine

	energy *metrics.KineticEnergy
	trace  []float64
	events []scene.Event
}

// NewModel builds the scene described by cfg. fps sets the redraw rate; the
// world advances in cfg.Dt steps to keep up with wall time.
func NewModel(cfg *config.Config, fps int) (Model, error) {
	m := Model{
		cfg:    cfg,
		dt:     cfg.Dt,
		fps:    max(fps, 1),
		speed:  1,
		canvas: NewCanvas(canvasWidth, canvasHeight),
		proj:   SideView,
		log:    &lastLine{},
		energy: metrics.NewKineticEnergy(),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) reset() error {
	sc, err := scene.Build(m.cfg, scene.WithLogger(m.log))
	if err != nil {
		return err
	}
	m.sc = sc
	m.view = FitViewport(sc, m.canvas, m.proj)
	m.running = true
	m.err = nil
	m.trace = m.trace[:0]
	m.events = m.events[:0]
	m.energy.Reset()
	return nil
}

// Scene exposes the running scene.
func (m Model) Scene() *scene.Scene { return m.sc }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// stepsPerFrame is how many world steps cover one redraw interval.
func (m Model) stepsPerFrame() int {
	n := int(math.Round(1 / (float64(m.fps) * m.dt)))
	return max(n, 1) * m.speed
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "n", ".":
			m.advance(1)
		case "v":
			m.proj = (m.proj + 1) % 2
			m.view = FitViewport(m.sc, m.canvas, m.proj)
		case "+", "=":
			m.speed = min(m.speed*2, 16)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance(m.stepsPerFrame())
		}
		return m, m.tick()
	}
	return m, nil
}

// advance steps the world n times and stops at the end of the scene.
func (m *Model) advance(n int) {
	for i := 0; i < n; i++ {
		if m.sc.World.Time() >= m.cfg.Duration {
			m.running = false
			break
		}
		if err := m.sc.Step(m.dt); err != nil {
			m.err = err
			m.running = false
			break
		}
	}

	m.energy.Observe(sim.Frame{Scene: m.sc, Time: m.sc.World.Time()})
	m.trace = append(m.trace, m.energy.Value())
	if len(m.trace) > historyCapacity {
		m.trace = m.trace[1:]
	}

	m.events = append(m.events, m.sc.Recorder().Drain()...)
	if len(m.events) > eventLines {
		m.events = m.events[len(m.events)-eventLines:]
	}
}

func (m Model) View() string {
	m.canvas.Clear()
	DrawScene(m.canvas, m.view, m.sc)

	theme := CurrentTheme
	base := lipgloss.NewStyle().Foreground(theme.Primary)
	hl := lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)
	canvasView := canvasStyle.Render(m.canvas.Render(base, hl))

	st := m.sc.World.Stats()
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.sc.Name)) + "\n")

	status := StatusRunning.Render("RUNNING")
	switch {
	case m.err != nil:
		status = StatusPaused.Render("ERROR: " + m.err.Error())
	case st.Paused:
		status = StatusPaused.Render("NO SETTINGS")
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	row := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs / %.0fs", st.Time, m.cfg.Duration))
	s.WriteString(ProgressBar(st.Time/m.cfg.Duration, 30) + "\n")
	row("Tick", fmt.Sprintf("%d", st.Tick))
	row("Speed", fmt.Sprintf("x%d", m.speed))
	row("View", m.proj.String())
	row("Shapes", fmt.Sprintf("%d", st.Shapes))
	row("Contacts", fmt.Sprintf("%d", st.Contacts))
	row("Max force", fmt.Sprintf("%.2f N", st.MaxNormalForce))
	row("Despawned", fmt.Sprintf("%d", st.Despawned))
	row("Energy", fmt.Sprintf("%.3f J", m.energy.Value()))
	s.WriteString(SparkMid.Render(Sparkline(m.trace, 30)) + "\n")

	s.WriteString("\nEVENTS\n")
	if len(m.events) == 0 {
		s.WriteString(Subtle.Render("  (none)") + "\n")
	}
	for _, e := range m.events {
		line := fmt.Sprintf("%5d %-13s %s", e.Tick, e.Kind, e.Shape)
		if e.Other != "" {
			line += " > " + e.Other
		}
		s.WriteString(EventStyle(e.Kind)(line) + "\n")
	}
	if m.log.msg != "" {
		s.WriteString("\n" + Subtle.Render(m.log.msg) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause N:Step R:Reset Q:Quit\nV:View +/-:Speed T:Theme ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)

	if m.showHelp {
		return KeyHint.Render(helpText) + "\n\n" + mainView
	}
	return mainView
}

const helpText = `Space  pause or resume
N / .  advance one step
R      rebuild the scene
V      switch side and top view
+ / -  change playback speed
T      cycle colour themes
?      toggle this help
Q      quit`

// RunLive opens the live view for cfg until the user quits.
func RunLive(cfg *config.Config, fps int) error {
	m, err := NewModel(cfg, fps)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
