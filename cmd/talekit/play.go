package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/talekit/talekit"
	"github.com/talekit/talekit/diag"
	"github.com/talekit/talekit/runtime"
)

func playCmd() *cobra.Command {
	var configPath, startNode string
	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play a script interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			cfg := &playConfig{}
			if configPath != "" {
				cfg, err = loadPlayConfig(configPath)
				if err != nil {
					return err
				}
			}
			start := firstNonEmpty(startNode, cfg.StartNode, "start")

			env := runtime.NewMapEnvironment()
			if err := seedEnvironment(env, cfg.Variables); err != nil {
				return err
			}

			tr := &transcript{}
			runner, diags, err := talekit.Compile(string(b),
				runtime.WithEnvironment(env),
				runtime.WithHooks(tr.hooks()),
				runtime.WithLogger(newLogger()),
			)
			for _, d := range diags {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s:%s\n", args[0], d)
			}
			if err != nil {
				return err
			}
			if diag.HasErrors(diags) {
				return fmt.Errorf("script has errors")
			}

			p := tea.NewProgram(newPlayModel(runner, tr, start), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML preset file (start node, variables)")
	cmd.Flags().StringVar(&startNode, "start", "", "node to start at (overrides config)")
	return cmd
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// transcript receives runner hook events. The runner fires hooks
// synchronously inside Start/Continue/SelectChoice, so the model drains
// it right after each call; no locking is needed.
type transcript struct {
	lines       []string
	choices     []runtime.ChoiceOption
	ended       bool
	endReason   runtime.EndReason
	waitPending bool
	waitFor     time.Duration
}

func (tr *transcript) hooks() runtime.Hooks {
	return runtime.Hooks{
		NodeStarted: func(ev runtime.NodeStartedEvent) {
			tr.lines = append(tr.lines, nodeStyle.Render("-- "+ev.Node+" --"))
		},
		LineShown: func(ev runtime.LineEvent) {
			tr.lines = append(tr.lines, formatLine(ev))
		},
		ChoicesShown: func(ev runtime.ChoicesEvent) {
			tr.choices = ev.Options
		},
		ChoiceSelected: func(ev runtime.ChoiceSelectedEvent) {
			tr.choices = nil
			tr.lines = append(tr.lines, selectedStyle.Render("> "+ev.Text))
		},
		WaitRequested: func(ev runtime.WaitEvent) bool {
			tr.waitPending = true
			tr.waitFor = ev.Duration
			return true
		},
		DialogueEnded: func(ev runtime.DialogueEndedEvent) {
			tr.ended = true
			tr.endReason = ev.Reason
		},
	}
}

func formatLine(ev runtime.LineEvent) string {
	if ev.Speaker == "" {
		return narrationStyle.Render(ev.Text)
	}
	name := ev.Speaker
	if ev.Emotion != "" {
		name += " (" + ev.Emotion + ")"
	}
	return speakerStyle.Render(name+":") + " " + ev.Text
}

var (
	nodeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	speakerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	narrationStyle = lipgloss.NewStyle().Italic(true)
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Padding(0, 1)
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type waitDoneMsg struct{}

type playModel struct {
	runner   *runtime.Runner
	tr       *transcript
	start    string
	viewport viewport.Model
	ready    bool
	choices  []runtime.ChoiceOption
	cursor   int
	waiting  bool
	status   string
}

func newPlayModel(runner *runtime.Runner, tr *transcript, start string) playModel {
	return playModel{
		runner:   runner,
		tr:       tr,
		start:    start,
		viewport: viewport.New(80, 20),
		status:   "starting",
	}
}

func (m playModel) Init() tea.Cmd {
	return func() tea.Msg { return startMsg{} }
}

type startMsg struct{}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		vh := msg.Height - 2
		if vh < 1 {
			vh = 1
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = vh
		m.ready = true
		return m, nil

	case startMsg:
		if err := m.runner.Start(m.start); err != nil {
			m.tr.lines = append(m.tr.lines, errStyle.Render(err.Error()))
			m.status = "failed"
			m.refresh()
			return m, nil
		}
		return m.drain()

	case waitDoneMsg:
		m.waiting = false
		if err := m.runner.Continue(); err != nil {
			m.tr.lines = append(m.tr.lines, errStyle.Render(err.Error()))
		}
		return m.drain()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g", "home":
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		case "up", "k":
			if len(m.choices) > 0 {
				m.cursor = prevAvailable(m.choices, m.cursor)
			}
			return m, nil
		case "down", "j":
			if len(m.choices) > 0 {
				m.cursor = nextAvailable(m.choices, m.cursor)
			}
			return m, nil
		case "enter", " ":
			return m.step()
		case "r":
			if m.tr.ended || m.status == "failed" {
				m.tr.lines = nil
				m.tr.choices = nil
				m.tr.ended = false
				m.choices = nil
				m.cursor = 0
				m.status = "restarting"
				return m, func() tea.Msg { return startMsg{} }
			}
			return m, nil
		default:
			if len(m.choices) > 0 {
				if n := digitKey(msg.String()); n >= 1 && n <= len(m.choices) {
					m.cursor = n - 1
					return m.step()
				}
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// step advances the dialogue: selects the highlighted choice when one is
// pending, otherwise continues to the next beat.
func (m playModel) step() (tea.Model, tea.Cmd) {
	if m.waiting || m.tr.ended {
		return m, nil
	}
	var err error
	if len(m.choices) > 0 {
		if !m.choices[m.cursor].Available {
			return m, nil
		}
		err = m.runner.SelectChoice(m.cursor)
	} else if m.runner.State() != runtime.StateIdle {
		err = m.runner.Continue()
	} else {
		return m, nil
	}
	if err != nil {
		m.tr.lines = append(m.tr.lines, errStyle.Render(err.Error()))
	}
	return m.drain()
}

// drain pulls pending transcript state into the model after a runner
// call and schedules the wait timer when one was requested.
func (m playModel) drain() (tea.Model, tea.Cmd) {
	m.choices = m.tr.choices
	if m.cursor >= len(m.choices) {
		m.cursor = 0
	}
	if len(m.choices) > 0 && !m.choices[m.cursor].Available {
		m.cursor = nextAvailable(m.choices, m.cursor)
	}
	switch {
	case m.tr.ended:
		m.status = "ended (" + m.tr.endReason.String() + ") - r to restart, q to quit"
	case len(m.choices) > 0:
		m.status = "choose an option"
	default:
		m.status = "enter to continue"
	}
	m.refresh()
	if m.tr.waitPending {
		m.tr.waitPending = false
		m.waiting = true
		m.status = "waiting..."
		d := m.tr.waitFor
		return m, tea.Tick(d, func(time.Time) tea.Msg { return waitDoneMsg{} })
	}
	return m, nil
}

func (m *playModel) refresh() {
	var sb strings.Builder
	for _, line := range m.tr.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	for i, ch := range m.choices {
		label := fmt.Sprintf("%d. %s", i+1, ch.Text)
		switch {
		case !ch.Available:
			sb.WriteString("   " + dimStyle.Render(label))
		case i == m.cursor:
			sb.WriteString(cursorStyle.Render(" > " + label))
		default:
			sb.WriteString("   " + label)
		}
		sb.WriteByte('\n')
	}
	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

func (m playModel) View() string {
	if !m.ready {
		return "initializing..."
	}
	return m.viewport.View() + "\n" + statusStyle.Render(m.status)
}

func digitKey(s string) int {
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return int(s[0] - '0')
	}
	return 0
}

func nextAvailable(choices []runtime.ChoiceOption, from int) int {
	for i := 1; i <= len(choices); i++ {
		idx := (from + i) % len(choices)
		if choices[idx].Available {
			return idx
		}
	}
	return from
}

func prevAvailable(choices []runtime.ChoiceOption, from int) int {
	n := len(choices)
	for i := 1; i <= n; i++ {
		idx := ((from-i)%n + n) % n
		if choices[idx].Available {
			return idx
		}
	}
	return from
}
