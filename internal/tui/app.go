package tui

import (
	"github.com/OFFIS-RIT/rhetorik/internal/app"
	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
	"github.com/OFFIS-RIT/rhetorik/pkg/graph"
	"github.com/OFFIS-RIT/rhetorik/pkg/interaction"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type inputFocus int

const (
	focusURL inputFocus = iota
	focusText
)

// App is the root Bubble Tea model.
// App does not hold the session. Snapshots arrive via SessionUpdated.
type App struct {
	cmds Commands

	url     textinput.Model
	text    textarea.Model
	spinner spinner.Model
	focus   inputFocus

	snap    interaction.Snapshot
	article string
	loading bool
	err     error
	hero    bool

	// cursors into the sentence list, the topic ring and the actor nodes
	cursor int
	topic  int
	actor  int

	width  int
	height int
	ready  bool
}

// NewApp creates the explorer with the input view shown.
func NewApp(cmds Commands) App {
	url := textinput.New()
	url.Placeholder = "https://www.beispiel-zeitung.de/..."
	url.Prompt = "› "
	url.Focus()

	text := textarea.New()
	text.Placeholder = "Artikeltext hier einfügen..."
	text.ShowLineNumbers = false
	text.CharLimit = 0
	text.MaxHeight = 0
	text.SetHeight(6)
	text.Blur()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	return App{
		cmds:    cmds,
		url:     url,
		text:    text,
		spinner: s,
		hero:    true,
	}
}

// Init starts the cursor blink of the URL field.
func (a App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.hero {
			return a.handleHeroKey(msg)
		}
		return a.handleResultKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.url.Width = max(msg.Width-8, 10)
		a.text.SetWidth(max(msg.Width-4, 10))
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case AnalysisFinished:
		if !msg.Applied {
			return a, nil
		}
		a.loading = false
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.err = nil
		a.article = msg.Text
		a.cursor, a.topic, a.actor = 0, 0, 0
		return a, a.refresh()

	case SessionUpdated:
		a.snap = msg.Snapshot
		a.syncCursor()
		return a, nil

	case SimulationTick:
		return a, a.refresh()
	}

	return a, nil
}

func (a App) refresh() tea.Cmd {
	if a.cmds.Refresh == nil {
		return nil
	}
	return a.cmds.Refresh()
}

// syncCursor keeps the sentence cursor in range and follows external
// sentence selection.
func (a *App) syncCursor() {
	sentences := a.sentences()
	if target := a.snap.State.ScrollToSentenceID; target != "" {
		for i, s := range sentences {
			if s.ID == target {
				a.cursor = i
			}
		}
	}
	if a.cursor >= len(sentences) {
		a.cursor = max(len(sentences)-1, 0)
	}
}

func (a App) handleHeroKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		if a.snap.Artifact != nil || a.err != nil || a.loading {
			a.hero = false
			return a, nil
		}
		return a, tea.Quit

	case "tab", "shift+tab":
		if a.focus == focusURL {
			a.focus = focusText
			a.url.Blur()
			return a, a.text.Focus()
		}
		a.focus = focusURL
		a.text.Blur()
		return a, a.url.Focus()

	case "ctrl+e":
		return a.loadExample()

	case "enter":
		if a.focus == focusURL {
			return a.submit(app.URLInput(a.url.Value()))
		}

	case "ctrl+s":
		if a.focus == focusText {
			return a.submit(app.TextInput(a.text.Value()))
		}
		return a, nil
	}

	var cmd tea.Cmd
	if a.focus == focusURL {
		a.url, cmd = a.url.Update(msg)
	} else {
		a.text, cmd = a.text.Update(msg)
	}
	return a, cmd
}

func (a App) loadExample() (tea.Model, tea.Cmd) {
	in := app.ExampleInput()
	a.url.SetValue(in.URL)
	a.text.SetValue(in.Text)
	return a.submit(in)
}

// submit starts an analysis. The current result stays on screen until
// the new one is applied.
func (a App) submit(in app.Input) (tea.Model, tea.Cmd) {
	if !in.Ready() || a.cmds.Submit == nil {
		return a, nil
	}
	a.loading = true
	a.err = nil
	a.hero = false
	return a, tea.Batch(a.cmds.Submit(in), a.spinner.Tick)
}

func (a App) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "n":
		a.hero = true
		a.err = nil
		return a, nil

	case "e":
		return a.loadExample()

	case "j", "down":
		if a.cursor < len(a.sentences())-1 {
			a.cursor++
		}
		return a, nil

	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case "enter":
		sentences := a.sentences()
		if a.cursor < len(sentences) {
			return a, a.dispatch(interaction.Event{Kind: interaction.ClickSentence, ID: sentences[a.cursor].ID})
		}
		return a, nil

	case "1", "2", "3", "4", "5", "6", "7":
		label := analysis.WheelOrder[key[0]-'1']
		return a, a.dispatch(interaction.Event{Kind: interaction.ClickWheel, Emotion: label})

	case "]", "[":
		a.topic = step(a.topic, len(a.topicNodes()), key == "]")
		return a, nil

	case "t":
		if nodes := a.topicNodes(); a.topic < len(nodes) {
			return a, a.dispatch(interaction.EventForNode(nodes[a.topic]))
		}
		return a, nil

	case ">", "<":
		a.actor = step(a.actor, len(a.actorNodes()), key == ">")
		return a, nil

	case "a":
		if nodes := a.actorNodes(); a.actor < len(nodes) {
			return a, a.dispatch(interaction.EventForNode(nodes[a.actor]))
		}
		return a, nil

	case "backspace":
		return a, a.dispatch(interaction.Event{Kind: clearKind(a.snap.State.Mode)})

	case "r", "esc":
		return a, a.dispatch(interaction.Event{Kind: interaction.Reset})
	}

	return a, nil
}

func (a App) dispatch(ev interaction.Event) tea.Cmd {
	if a.cmds.Dispatch == nil || a.snap.Graph == nil {
		return nil
	}
	return a.cmds.Dispatch(ev)
}

// clearKind maps the active mode onto the event that clears its selection.
func clearKind(m graph.Mode) interaction.EventKind {
	switch m {
	case graph.ModeEmotion:
		return interaction.ClearEmotion
	case graph.ModeTopic:
		return interaction.ClearTopic
	case graph.ModeSentence:
		return interaction.ClearSentence
	case graph.ModeActor:
		return interaction.ClearActor
	}
	return interaction.Reset
}

func step(i, n int, forward bool) int {
	if n == 0 {
		return 0
	}
	if forward {
		return (i + 1) % n
	}
	return (i - 1 + n) % n
}

func (a App) sentences() []analysis.Sentence {
	if a.snap.Artifact == nil {
		return nil
	}
	return a.snap.Artifact.Sentences
}

func (a App) topicNodes() []graph.Node {
	if a.snap.Graph == nil {
		return nil
	}
	var nodes []graph.Node
	for _, id := range a.snap.Graph.TopicIDs() {
		if n, ok := a.snap.Graph.Node(id); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func (a App) actorNodes() []graph.Node {
	if a.snap.Graph == nil {
		return nil
	}
	var nodes []graph.Node
	for _, n := range a.snap.Graph.Nodes {
		if n.Type.IsActor() {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Cursor returns the sentence cursor (for testing).
func (a App) Cursor() int {
	return a.cursor
}

// Loading reports whether an analysis is in flight.
func (a App) Loading() bool {
	return a.loading
}

// Err returns the error of the last analysis.
func (a App) Err() error {
	return a.err
}
