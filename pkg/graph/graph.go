// Package graph projects an analysis artifact and its aggregate onto a
// node/edge graph and derives view-dependent layout anchors and
// visibility from it.
//
// Graph data is built once per artifact and never mutated afterwards.
// Everything that depends on the current view (anchors, zoom target,
// visible ids) is computed as an overlay by Layout and Visible.
package graph

import (
	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
)

// NodeType classifies graph nodes.
type NodeType string

const (
	TypeTopic    NodeType = "Topic"
	TypeWheel    NodeType = "WheelNode"
	TypeSentence NodeType = "Sentence"
	TypeOutlet   NodeType = "Outlet"
	TypeFilter   NodeType = "Filter"
	TypeGroup    NodeType = "Group"
	TypeDevice   NodeType = "Device"
	TypeFallacy  NodeType = "Fallacy"
	TypeFrame    NodeType = "Frame"
	TypeRole     NodeType = "Role"
	TypeEmotion  NodeType = "Emotion"
)

// IsActor reports whether clicking a node of this type focuses an actor.
func (t NodeType) IsActor() bool {
	switch t {
	case TypeTopic, TypeWheel, TypeSentence:
		return false
	}
	return true
}

// Edge types created by the projector. Seed edges keep their own type.
const (
	EdgeWheelCore      = "WHEEL_CORE"
	EdgeSentenceAttach = "SENTENCE_ATTACH"
)

// Node is a graph node. Topic and WheelNode are virtual layout helpers.
type Node struct {
	ID            string                `json:"id"`
	Label         string                `json:"label"`
	Type          NodeType              `json:"type"`
	EmotionLabel  analysis.EmotionLabel `json:"emotionLabel,omitempty"`
	TopicID       string                `json:"topicId,omitempty"`
	ParentTopicID string                `json:"parentTopicId,omitempty"`
	SentenceID    string                `json:"sentenceId,omitempty"`
	Virtual       bool                  `json:"virtual"`
	Properties    map[string]any        `json:"properties"`
}

// Edge is a graph edge with its spring parameters.
type Edge struct {
	ID         string         `json:"id"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Strength   float64        `json:"strength"`
	Distance   float64        `json:"distance"`
}

// Params holds the geometry of the projection.
type Params struct {
	OuterRadius   float64
	WheelRadius   float64
	SentenceOrbit float64
	SeedDistance  float64
	TopicZoom     float64

	OverviewScale float64
	TopicScale    float64
	MinScale      float64
	MaxScale      float64
}

// DefaultParams returns the standard geometry.
func DefaultParams() Params {
	return Params{
		OuterRadius:   420,
		WheelRadius:   72,
		SentenceOrbit: 28,
		SeedDistance:  140,
		TopicZoom:     1.8,
		OverviewScale: 0.6,
		TopicScale:    1.1,
		MinScale:      0.1,
		MaxScale:      8,
	}
}

// Graph is the projected graph of one artifact. Nodes and edges are
// stored flat and indexed by id; neighbourhoods are resolved by lookup.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	params    Params
	nodeIndex map[string]int
	adjacency map[string][]string

	// topic node ids, largest topic first
	topics []string
	wheels map[string][7]string
	// artifact sentence id -> sentence node id
	sentenceNodes map[string]string
	sentences     map[string]analysis.Sentence
	filters       []analysis.Filter
}

// Params returns the geometry the graph was projected with.
func (g *Graph) Params() Params {
	return g.params
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Neighbours returns the ids of all nodes sharing an edge with id.
func (g *Graph) Neighbours(id string) []string {
	return g.adjacency[id]
}

// TopicIDs returns the topic node ids in ring order.
func (g *Graph) TopicIDs() []string {
	return g.topics
}

// Wheels returns the seven wheel node ids of a topic in canonical order.
func (g *Graph) Wheels(topicID string) ([7]string, bool) {
	w, ok := g.wheels[topicID]
	return w, ok
}

// SentenceNode returns the node id of an artifact sentence.
func (g *Graph) SentenceNode(sentenceID string) (string, bool) {
	id, ok := g.sentenceNodes[sentenceID]
	return id, ok
}

// NodesOfType returns all nodes of one type in insertion order.
func (g *Graph) NodesOfType(t NodeType) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

func (g *Graph) addNode(n Node) bool {
	if _, dup := g.nodeIndex[n.ID]; dup {
		return false
	}
	if n.Properties == nil {
		n.Properties = map[string]any{}
	}
	g.nodeIndex[n.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	return true
}

func (g *Graph) addEdge(e Edge) {
	if e.Properties == nil {
		e.Properties = map[string]any{}
	}
	g.Edges = append(g.Edges, e)
	g.adjacency[e.From] = append(g.adjacency[e.From], e.To)
	g.adjacency[e.To] = append(g.adjacency[e.To], e.From)
}

// WheelID is the node id of one spoke of a topic's emotion wheel.
func WheelID(topicID string, e analysis.EmotionLabel) string {
	return "wn_" + topicID + "_" + string(e)
}

// SentenceNodeID is the node id of a sentence inside a topic.
func SentenceNodeID(topicID, sentenceID string) string {
	return "sn_" + topicID + "_" + sentenceID
}
