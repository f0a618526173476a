// Package interaction holds the view state of an analysis session. All
// user actions reduce through Reduce; Session ties the reducer to the
// artifact lifecycle and the force simulation.
package interaction

import (
	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
	"github.com/OFFIS-RIT/rhetorik/pkg/graph"
)

// State is the current view mode and selection.
type State struct {
	Mode               graph.Mode            `json:"viewMode"`
	SelectedEmotion    analysis.EmotionLabel `json:"selectedEmotion,omitempty"`
	SelectedTopicID    string                `json:"selectedTopicId,omitempty"`
	SelectedSentenceID string                `json:"selectedSentenceId,omitempty"`
	FocusedActorID     string                `json:"focusedActorId,omitempty"`

	// ScrollToSentenceID is set when the article list has to bring a
	// sentence into view.
	ScrollToSentenceID string `json:"scrollToSentenceId,omitempty"`
}

// Overview is the initial state.
func Overview() State {
	return State{Mode: graph.ModeOverview}
}

// View converts the state into the projector's view.
func (s State) View() graph.View {
	return graph.View{
		Mode:       s.Mode,
		Emotion:    s.SelectedEmotion,
		TopicID:    s.SelectedTopicID,
		SentenceID: s.SelectedSentenceID,
		ActorID:    s.FocusedActorID,
	}
}

// EventKind enumerates user actions.
type EventKind int

const (
	ClickWheel EventKind = iota
	ClickTopic
	ClickSentence
	ClickActor
	Reset
	SelectSentence
	ClearEmotion
	ClearTopic
	ClearSentence
	ClearActor
)

// Event is a user action. ID carries the clicked topic, sentence or actor
// id; Emotion the spoke of a wheel click or the emotion of a clicked topic.
type Event struct {
	Kind    EventKind
	ID      string
	Emotion analysis.EmotionLabel
}

// EventForNode maps a click on a graph node onto the matching event.
func EventForNode(n graph.Node) Event {
	switch n.Type {
	case graph.TypeWheel:
		return Event{Kind: ClickWheel, Emotion: n.EmotionLabel}
	case graph.TypeTopic:
		return Event{Kind: ClickTopic, ID: n.ID, Emotion: n.EmotionLabel}
	case graph.TypeSentence:
		return Event{Kind: ClickSentence, ID: n.SentenceID}
	}
	return Event{Kind: ClickActor, ID: n.ID}
}

// Reduce applies an event to a state. Clicking the selected element again
// pops one level: back to overview, or from a topic back to its emotion
// when that emotion is still selected.
func Reduce(s State, ev Event) State {
	s.ScrollToSentenceID = ""

	switch ev.Kind {
	case ClickWheel:
		if s.Mode == graph.ModeEmotion && s.SelectedEmotion == ev.Emotion {
			return Overview()
		}
		return State{Mode: graph.ModeEmotion, SelectedEmotion: ev.Emotion}

	case ClickTopic:
		if s.Mode == graph.ModeTopic && s.SelectedTopicID == ev.ID {
			return popTopic(s)
		}
		next := State{Mode: graph.ModeTopic, SelectedTopicID: ev.ID}
		if s.SelectedEmotion != "" && s.SelectedEmotion == ev.Emotion {
			next.SelectedEmotion = s.SelectedEmotion
		}
		return next

	case ClickSentence:
		if s.Mode == graph.ModeSentence && s.SelectedSentenceID == ev.ID {
			return Overview()
		}
		return State{Mode: graph.ModeSentence, SelectedSentenceID: ev.ID}

	case SelectSentence:
		return State{Mode: graph.ModeSentence, SelectedSentenceID: ev.ID, ScrollToSentenceID: ev.ID}

	case ClickActor:
		if s.Mode == graph.ModeActor && s.FocusedActorID == ev.ID {
			return Overview()
		}
		return State{Mode: graph.ModeActor, FocusedActorID: ev.ID}

	case Reset:
		return Overview()

	case ClearEmotion:
		s.SelectedEmotion = ""
		if s.Mode == graph.ModeEmotion {
			return Overview()
		}
	case ClearTopic:
		if s.Mode == graph.ModeTopic {
			return popTopic(s)
		}
		s.SelectedTopicID = ""
	case ClearSentence:
		s.SelectedSentenceID = ""
		if s.Mode == graph.ModeSentence {
			return Overview()
		}
	case ClearActor:
		s.FocusedActorID = ""
		if s.Mode == graph.ModeActor {
			return Overview()
		}
	}

	return s
}

func popTopic(s State) State {
	if s.SelectedEmotion != "" {
		return State{Mode: graph.ModeEmotion, SelectedEmotion: s.SelectedEmotion}
	}
	return Overview()
}
