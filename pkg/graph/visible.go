package graph

import (
	"strings"

	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
)

// Opacity levels of visible and hidden elements.
const (
	OpacityVisible = 1.0
	OpacityHidden  = 0.05
)

// VisibleSet is the set of node ids shown at full opacity. An empty set
// means every node is visible.
type VisibleSet map[string]struct{}

// Contains reports whether a node is visible.
func (v VisibleSet) Contains(id string) bool {
	if len(v) == 0 {
		return true
	}
	_, ok := v[id]
	return ok
}

// Edge reports whether an edge is visible, i.e. both endpoints are.
func (v VisibleSet) Edge(e Edge) bool {
	return v.Contains(e.From) && v.Contains(e.To)
}

// Opacity returns the target opacity of a node.
func (v VisibleSet) Opacity(id string) float64 {
	if v.Contains(id) {
		return OpacityVisible
	}
	return OpacityHidden
}

func (v VisibleSet) add(ids ...string) {
	for _, id := range ids {
		if id != "" {
			v[id] = struct{}{}
		}
	}
}

// Visible computes the visible node set of a view.
func (g *Graph) Visible(v View) VisibleSet {
	set := make(VisibleSet)

	switch v.Mode {
	case ModeOverview:
		for _, n := range g.Nodes {
			switch n.Type {
			case TypeTopic, TypeWheel, TypeSentence:
				set.add(n.ID)
			}
		}

	case ModeTopic:
		if _, ok := g.nodeIndex[v.TopicID]; !ok {
			break
		}
		set.add(v.TopicID)
		for _, n := range g.Nodes {
			if n.ParentTopicID == v.TopicID {
				set.add(n.ID)
			}
		}
		set.add(g.adjacency[v.TopicID]...)

	case ModeEmotion:
		for _, n := range g.Nodes {
			if n.EmotionLabel != "" && n.EmotionLabel == v.Emotion {
				set.add(n.ID)
			}
		}

	case ModeSentence:
		nid, ok := g.resolveSentence(v.SentenceID)
		if !ok {
			break
		}
		n, _ := g.Node(nid)
		set.add(nid, n.ParentTopicID, WheelID(n.ParentTopicID, n.EmotionLabel))

	case ModeActor:
		actor, ok := g.Node(v.ActorID)
		if !ok {
			break
		}
		set.add(actor.ID)
		for _, sid := range g.actorSentences(actor) {
			set.add(g.sentenceNodes[sid])
		}
	}

	return set
}

// resolveSentence accepts either an artifact sentence id or a sentence
// node id.
func (g *Graph) resolveSentence(id string) (string, bool) {
	if nid, ok := g.sentenceNodes[id]; ok {
		return nid, true
	}
	if n, ok := g.Node(id); ok && n.Type == TypeSentence {
		return id, true
	}
	return "", false
}

// actorSentences returns the artifact sentence ids related to an actor
// node. Filters contribute their related_sentence_ids (an Outlet relates
// to every filter), groups, roles and rhetorical tags match the sentence
// annotations by label.
func (g *Graph) actorSentences(actor Node) []string {
	var out []string
	switch actor.Type {
	case TypeOutlet:
		for _, f := range g.filters {
			out = append(out, f.RelatedSentenceIDs...)
		}
	case TypeFilter:
		for _, f := range g.filters {
			if matchesFilter(actor, string(f.Name)) {
				out = append(out, f.RelatedSentenceIDs...)
			}
		}
	default:
		label := strings.ToLower(strings.TrimSpace(actor.Label))
		if label == "" {
			return nil
		}
		for id, s := range g.sentences {
			if sentenceMentions(actor.Type, label, s) {
				out = append(out, id)
			}
		}
	}
	return out
}

func matchesFilter(actor Node, name string) bool {
	name = strings.ToLower(name)
	if strings.ToLower(actor.Label) == name {
		return true
	}
	if v, ok := actor.Properties["name"].(string); ok && strings.ToLower(v) == name {
		return true
	}
	return strings.Contains(strings.ToLower(actor.ID), name)
}

func sentenceMentions(t NodeType, label string, s analysis.Sentence) bool {
	eq := func(v string) bool { return strings.ToLower(strings.TrimSpace(v)) == label }
	switch t {
	case TypeGroup:
		for _, gr := range s.Groups {
			if eq(gr.Label) {
				return true
			}
		}
	case TypeRole:
		for _, gr := range s.Groups {
			if eq(gr.Role) {
				return true
			}
		}
	case TypeDevice:
		for _, d := range s.Devices {
			if eq(d.Name) {
				return true
			}
		}
	case TypeFallacy:
		for _, f := range s.Fallacies {
			if eq(f.Name) {
				return true
			}
		}
	case TypeFrame:
		for _, f := range s.Frames {
			if eq(f.Name) {
				return true
			}
		}
	case TypeEmotion:
		return eq(string(s.Emotion.Label))
	}
	return false
}
