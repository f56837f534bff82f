// Package tui provides the interactive setup wizard for flyward.
//
// The wizard runs the same linear flow as `flyward setup`, one step at a
// time with visible progress: locate flyctl, verify authentication, mint
// a deploy token, copy it to the clipboard. On success it prints the
// GitHub Actions instructions and exits.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joyshmitz/flyward/internal/db"
	"github.com/joyshmitz/flyward/internal/setup"
)

type stepStatus int

const (
	statusPending stepStatus = iota
	statusRunning
	statusDone
	statusSkipped
	statusFailed
)

// step is one unit of wizard work. run returns a short detail string for
// display. fatal marks steps whose failure aborts the wizard; non-fatal
// steps degrade to skipped.
type step struct {
	title string
	fatal bool
	run   func(ctx context.Context) (string, error)
}

type stepDoneMsg struct {
	index  int
	detail string
	err    error
}

// Model is the Bubble Tea model for the setup wizard.
type Model struct {
	ctx      context.Context
	steps    []step
	statuses []stepStatus
	details  []string
	spinner  spinner.Model
	styles   Styles
	current  int
	err      error
	done     bool
	epilogue string
	onFinish func()
}

// Config wires the wizard to its collaborators.
type Config struct {
	Client   setup.Client
	Clip     setup.Copier
	Recorder setup.Recorder
	Options  setup.Options
}

// NewModel builds the wizard model. The setup state (identity, token)
// is threaded through the step closures.
func NewModel(ctx context.Context, cfg Config) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:     ctx,
		spinner: sp,
		styles:  DefaultStyles(),
	}

	now := cfg.Options.Now
	if now == nil {
		now = time.Now
	}

	result := &setup.Result{}

	m.steps = []step{
		{
			title: "Locate flyctl",
			fatal: true,
			run: func(context.Context) (string, error) {
				path, err := cfg.Client.Path()
				if err != nil {
					return "", fmt.Errorf("not installed: install from https://fly.io/docs/flyctl/install/")
				}
				return path, nil
			},
		},
		{
			title: "Verify Fly.io authentication",
			fatal: true,
			run: func(ctx context.Context) (string, error) {
				identity, err := cfg.Client.Whoami(ctx)
				if err != nil {
					return "", fmt.Errorf("not logged in: run 'fly auth login' first")
				}
				result.Identity = identity
				return identity, nil
			},
		},
		{
			title: "Mint deploy token",
			fatal: true,
			run: func(ctx context.Context) (string, error) {
				name := cfg.Options.TokenName
				if name == "" {
					prefix := cfg.Options.TokenPrefix
					if prefix == "" {
						prefix = "github-actions-deploy"
					}
					name = prefix + "-" + now().Format("2006-01-02")
				}
				token, err := cfg.Client.CreateDeployToken(ctx, cfg.Options.App, name, cfg.Options.Expiry)
				if err != nil || token == "" {
					return "", fmt.Errorf("failed to generate a deploy token")
				}
				result.Token = token
				result.TokenName = name
				return name, nil
			},
		},
		{
			title: "Copy token to clipboard",
			run: func(context.Context) (string, error) {
				if cfg.Clip == nil || cfg.Options.SkipClipboard {
					return "", fmt.Errorf("skipped")
				}
				used, err := cfg.Clip.Copy(result.Token)
				if err != nil {
					return "", fmt.Errorf("no clipboard utility found")
				}
				result.CopiedVia = used
				return "via " + used, nil
			},
		},
		{
			title: "Record in history",
			run: func(context.Context) (string, error) {
				if cfg.Recorder == nil {
					return "", fmt.Errorf("skipped")
				}
				id, err := cfg.Recorder.RecordToken(tokenRecord(result, cfg.Options.App))
				if err != nil {
					return "", err
				}
				return id, nil
			},
		},
	}
	m.statuses = make([]stepStatus, len(m.steps))
	m.details = make([]string, len(m.steps))

	m.onFinish = func() {
		m.epilogue = setup.Instructions(result, true)
	}

	return m
}

func tokenRecord(result *setup.Result, app string) db.TokenRecord {
	return db.TokenRecord{
		Name:      result.TokenName,
		App:       app,
		Identity:  result.Identity,
		CopiedVia: result.CopiedVia,
	}
}

func (m *Model) runStep(i int) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.steps[i].run(m.ctx)
		return stepDoneMsg{index: i, detail: detail, err: err}
	}
}

// Init starts the spinner and the first step.
func (m *Model) Init() tea.Cmd {
	m.statuses[0] = statusRunning
	return tea.Batch(m.spinner.Tick, m.runStep(0))
}

// Update advances the wizard state machine.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil

	case stepDoneMsg:
		if msg.err != nil {
			if m.steps[msg.index].fatal {
				m.statuses[msg.index] = statusFailed
				m.details[msg.index] = msg.err.Error()
				m.err = msg.err
				m.done = true
				return m, tea.Quit
			}
			m.statuses[msg.index] = statusSkipped
			m.details[msg.index] = msg.err.Error()
		} else {
			m.statuses[msg.index] = statusDone
			m.details[msg.index] = msg.detail
		}

		next := msg.index + 1
		if next >= len(m.steps) {
			m.done = true
			if m.onFinish != nil {
				m.onFinish()
			}
			return m, tea.Quit
		}
		m.current = next
		m.statuses[next] = statusRunning
		return m, m.runStep(next)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the step list and, once finished, the instructions.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("flyward setup"))
	b.WriteString("\n")

	for i, s := range m.steps {
		var marker, detail string
		switch m.statuses[i] {
		case statusPending:
			marker = "  "
		case statusRunning:
			marker = m.spinner.View()
		case statusDone:
			marker = m.styles.Done.Render("✓ ")
		case statusSkipped:
			marker = m.styles.Skipped.Render("- ")
		case statusFailed:
			marker = m.styles.Failed.Render("✗ ")
		}
		if m.details[i] != "" {
			detail = "  " + m.styles.Detail.Render(m.details[i])
		}
		fmt.Fprintf(&b, "%s%s%s\n", marker, m.styles.Step.Render(s.title), detail)
	}

	if m.done {
		if m.err != nil {
			b.WriteString("\n" + m.styles.Failed.Render("Setup failed: "+m.err.Error()) + "\n")
		} else {
			b.WriteString(m.epilogue)
		}
	} else {
		b.WriteString(m.styles.Help.Render("q to quit"))
		b.WriteString("\n")
	}

	return b.String()
}

// Err returns the fatal error the wizard ended with, if any.
func (m *Model) Err() error {
	return m.err
}

// Run executes the wizard to completion.
func Run(ctx context.Context, cfg Config) error {
	m := NewModel(ctx, cfg)
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run wizard: %w", err)
	}
	if fm, ok := final.(*Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}
