package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/rigidsim/internal/config"
)

var (
	cyan  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

var sceneInfo = map[string]string{
	"drop":      "a ball and a crate fall onto the ground",
	"stack":     "a heavy ball knocks over a stack of blocks",
	"slingshot": "a bird is flung at a tower guarding a goal",
	"billiards": "a cue ball breaks a rack of six",
	"range":     "three shots at a wall and a finish line",
}

// picker lists the scene presets and hands the chosen one to the live view.
type picker struct {
	scenes []string
	cursor int
	fps    int
	live   *Model
	err    error
}

func newPicker(fps int) picker {
	return picker{scenes: config.ListPresets(), fps: fps}
}

func (p picker) Init() tea.Cmd { return nil }

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.live != nil {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			p.live = nil
			return p, nil
		}
		next, cmd := p.live.Update(msg)
		live := next.(Model)
		p.live = &live
		return p, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch k.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.scenes)-1 {
			p.cursor++
		}
	case "enter", " ":
		m, err := NewModel(config.GetPreset(p.scenes[p.cursor]), p.fps)
		if err != nil {
			p.err = err
			return p, nil
		}
		p.live = &m
		return p, m.Init()
	}
	return p, nil
}

func (p picker) View() string {
	if p.live != nil {
		return p.live.View() + "\n" + dim.Render("esc: back to scenes")
	}

	var b strings.Builder
	b.WriteString(cyan.Bold(true).Render("rigidsim") + dim.Render("  rigid body scenes") + "\n\n")
	for i, name := range p.scenes {
		cursor, style := "  ", dim
		if i == p.cursor {
			cursor, style = cyan.Render("> "), white
		}
		b.WriteString(fmt.Sprintf("%s%-10s %s\n", cursor, style.Render(name), dim.Render(sceneInfo[name])))
	}
	if p.err != nil {
		b.WriteString("\n" + StatusPaused.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n" + KeyHint.Render("↑/↓ select  enter run  q quit"))
	return b.String()
}

// RunInteractive shows the scene picker.
func RunInteractive(fps int) error {
	_, err := tea.NewProgram(newPicker(fps), tea.WithAltScreen()).Run()
	return err
}
