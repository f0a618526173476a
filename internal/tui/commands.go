package tui

import (
	"context"
	"sync/atomic"

	"github.com/OFFIS-RIT/rhetorik/internal/app"
	"github.com/OFFIS-RIT/rhetorik/pkg/interaction"

	tea "github.com/charmbracelet/bubbletea"
)

// Commands are the side effects the App may trigger. App never touches
// the session directly; results come back as messages.
type Commands struct {
	Submit   func(in app.Input) tea.Cmd
	Dispatch func(ev interaction.Event) tea.Cmd
	Refresh  func() tea.Cmd
}

// NewCommands binds the pipeline and the session to tea commands.
func NewCommands(ctx context.Context, p *app.Pipeline, s *interaction.Session) Commands {
	refresh := func() tea.Msg {
		return SessionUpdated{Snapshot: s.Snapshot()}
	}

	return Commands{
		Submit: func(in app.Input) tea.Cmd {
			return func() tea.Msg {
				res, applied, err := p.Submit(ctx, s, in)
				return AnalysisFinished{Text: res.Text, Applied: applied, Err: err}
			}
		},
		Dispatch: func(ev interaction.Event) tea.Cmd {
			return func() tea.Msg {
				s.Dispatch(ev)
				return refresh()
			}
		},
		Refresh: func() tea.Cmd {
			return refresh
		},
	}
}

// TickForwarder relays simulation ticks into a running program. Attach
// it before the first analysis completes; ticks before that are dropped.
type TickForwarder struct {
	program atomic.Pointer[tea.Program]
}

// Attach sets the program ticks are sent to.
func (f *TickForwarder) Attach(p *tea.Program) {
	f.program.Store(p)
}

// Tick is registered as the session's tick callback.
func (f *TickForwarder) Tick() {
	if p := f.program.Load(); p != nil {
		p.Send(SimulationTick{})
	}
}
