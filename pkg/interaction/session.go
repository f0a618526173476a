package interaction

import (
	"fmt"
	"sync"

	"github.com/OFFIS-RIT/rhetorik/pkg/aggregate"
	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
	"github.com/OFFIS-RIT/rhetorik/pkg/graph"
	"github.com/OFFIS-RIT/rhetorik/pkg/graph/force"
	"github.com/OFFIS-RIT/rhetorik/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// RunToken identifies one started analysis.
type RunToken string

// Session owns the artifact currently shown, its derived graph and force
// simulation, and the view state. Analyses may overlap; only the most
// recently started one is applied, older results are discarded.
type Session struct {
	mu sync.Mutex

	artifact *analysis.Artifact
	agg      aggregate.Aggregate
	graph    *graph.Graph
	sim      *force.Simulation
	state    State

	loading bool
	err     error
	latest  RunToken
	seq     uint64

	simParams force.Params
	onTick    func()
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSimulationParams overrides the force simulation parameters.
func WithSimulationParams(p force.Params) SessionOption {
	return func(s *Session) {
		s.simParams = p
	}
}

// WithOnTick registers a callback for every simulation tick. It must not
// call back into the session synchronously.
func WithOnTick(fn func()) SessionOption {
	return func(s *Session) {
		s.onTick = fn
	}
}

// NewSession creates an empty session in overview mode.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		state:     Overview(),
		simParams: force.DefaultParams(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin marks a new analysis as in flight and returns its token. The
// previous artifact stays visible until the new one completes.
func (s *Session) Begin() RunToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id, err := gonanoid.New()
	if err != nil {
		id = fmt.Sprintf("run-%d", s.seq)
	}
	s.latest = RunToken(id)
	s.loading = true
	s.err = nil
	return s.latest
}

// Complete installs the artifact of a finished analysis. It returns false
// and changes nothing when a newer analysis was started in the meantime.
func (s *Session) Complete(token RunToken, a *analysis.Artifact) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.latest {
		logger.Debug("[Session] Discarding stale analysis result", "run", token)
		return false
	}
	if a == nil {
		s.loading = false
		s.err = analysis.NewError(analysis.CodeLLMNoResponse, "analysis returned no artifact", nil)
		return true
	}

	if s.sim != nil {
		s.sim.Stop()
	}

	s.artifact = a
	s.agg = aggregate.Build(a.Sentences)
	s.graph = graph.Project(a, s.agg)
	s.sim = graph.NewSimulationWith(s.graph, s.simParams)
	if s.onTick != nil {
		s.sim.OnTick(s.onTick)
	}
	s.state = Overview()
	s.loading = false
	s.err = nil
	graph.ApplyLayout(s.sim, s.graph.Layout(s.state.View()))

	logger.Info("[Session] Analysis applied", "run", token, "sentences", len(a.Sentences), "topics", len(s.graph.TopicIDs()))
	return true
}

// Fail records the error of an analysis. The previous artifact, graph and
// view state are preserved. Stale failures are ignored.
func (s *Session) Fail(token RunToken, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.latest {
		return false
	}
	s.loading = false
	s.err = err
	logger.Warn("[Session] Analysis failed", "run", token, "code", analysis.CodeOf(err), "err", err)
	return true
}

// Dispatch reduces an event and applies the resulting layout to the
// running simulation. Events are ignored while no artifact is loaded.
func (s *Session) Dispatch(ev Event) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return s.state
	}

	s.state = Reduce(s.state, ev)
	graph.ApplyLayout(s.sim, s.graph.Layout(s.state.View()))
	return s.state
}

// Clear drops the current artifact and stops its simulation, returning
// the session to its initial state.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim != nil {
		s.sim.Stop()
	}
	s.artifact = nil
	s.agg = aggregate.Aggregate{}
	s.graph = nil
	s.sim = nil
	s.state = Overview()
	s.err = nil
}

// Close releases the simulation. The session must not be used afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim != nil {
		s.sim.Stop()
		s.sim = nil
	}
}

// View returns the projector view of the current state.
func (s *Session) View() graph.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.View()
}

// Snapshot is a consistent copy of the session for rendering.
type Snapshot struct {
	State     State
	Loading   bool
	Err       error
	Artifact  *analysis.Artifact
	Aggregate aggregate.Aggregate
	Graph     *graph.Graph
	Visible   graph.VisibleSet
	Positions map[string]force.Point
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:     s.state,
		Loading:   s.loading,
		Err:       s.err,
		Artifact:  s.artifact,
		Aggregate: s.agg,
		Graph:     s.graph,
	}
	if s.graph != nil {
		snap.Visible = s.graph.Visible(s.state.View())
	}
	if s.sim != nil {
		snap.Positions = s.sim.Positions()
	}
	return snap
}
