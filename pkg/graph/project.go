package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OFFIS-RIT/rhetorik/pkg/aggregate"
	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
	"github.com/OFFIS-RIT/rhetorik/pkg/logger"
)

// Project builds the graph of a normalized artifact with the default
// geometry.
func Project(a *analysis.Artifact, agg aggregate.Aggregate) *Graph {
	return ProjectWith(a, agg, DefaultParams())
}

// ProjectWith builds the graph of a normalized artifact.
//
// Every topic aggregate yields one virtual Topic node and seven virtual
// WheelNodes (one per emotion, whether or not sentences exist for it).
// Every sentence of the topic becomes a Sentence node attached to the
// spoke of its own emotion. Seed nodes other than Sentence and Topic are
// carried over untouched, seed edges are forwarded when both endpoints
// resolve.
func ProjectWith(a *analysis.Artifact, agg aggregate.Aggregate, p Params) *Graph {
	g := &Graph{
		params:        p,
		nodeIndex:     make(map[string]int),
		adjacency:     make(map[string][]string),
		wheels:        make(map[string][7]string),
		sentenceNodes: make(map[string]string),
		sentences:     make(map[string]analysis.Sentence),
	}
	if a == nil {
		return g
	}
	g.filters = a.Influence.Filters
	for _, s := range a.Sentences {
		g.sentences[s.ID] = s
	}

	topics := agg.Topics()
	sort.SliceStable(topics, func(i, j int) bool {
		if len(topics[i].SentenceIDs) != len(topics[j].SentenceIDs) {
			return len(topics[i].SentenceIDs) > len(topics[j].SentenceIDs)
		}
		return topics[i].ID < topics[j].ID
	})

	for _, t := range topics {
		g.addTopic(t)
	}
	g.addSeed(a.Graph, topics)

	logger.Debug("[Graph] Projected artifact", "topics", len(g.topics), "nodes", len(g.Nodes), "edges", len(g.Edges))
	return g
}

func (g *Graph) addTopic(t aggregate.Topic) {
	g.addNode(Node{
		ID:           t.ID,
		Label:        t.Label,
		Type:         TypeTopic,
		EmotionLabel: t.Emotion,
		TopicID:      t.ID,
		Virtual:      true,
		Properties: map[string]any{
			"sentence_count": len(t.SentenceIDs),
			"avg_pathos":     t.AvgPathos,
			"emotion":        string(t.Emotion),
		},
	})
	g.topics = append(g.topics, t.ID)

	var spokes [7]string
	for i, e := range analysis.WheelOrder {
		wid := WheelID(t.ID, e)
		spokes[i] = wid
		g.addNode(Node{
			ID:            wid,
			Label:         string(e),
			Type:          TypeWheel,
			EmotionLabel:  e,
			TopicID:       t.ID,
			ParentTopicID: t.ID,
			Virtual:       true,
			Properties: map[string]any{
				"emotion":     string(e),
				"parentTopic": t.ID,
			},
		})
		g.addEdge(Edge{
			ID:       "link_" + wid,
			From:     t.ID,
			To:       wid,
			Type:     EdgeWheelCore,
			Strength: 1,
			Distance: g.params.WheelRadius,
		})
	}
	g.wheels[t.ID] = spokes

	for _, sid := range t.SentenceIDs {
		s, ok := g.sentences[sid]
		if !ok {
			continue
		}
		nid := SentenceNodeID(t.ID, sid)
		g.addNode(Node{
			ID:            nid,
			Label:         s.Text,
			Type:          TypeSentence,
			EmotionLabel:  s.Emotion.Label,
			TopicID:       t.ID,
			ParentTopicID: t.ID,
			SentenceID:    sid,
			Properties: map[string]any{
				"text":         s.Text,
				"position":     s.Position,
				"pathos_score": s.PathosScore,
				"intensity":    s.Emotion.Intensity,
			},
		})
		g.sentenceNodes[sid] = nid

		spoke := analysis.WheelIndex(s.Emotion.Label)
		if spoke < 0 {
			spoke = analysis.WheelIndex(analysis.Neutral)
		}
		wid := spokes[spoke]
		g.addEdge(Edge{
			ID:       "link_s_" + sid + "_" + wid,
			From:     wid,
			To:       nid,
			Type:     EdgeSentenceAttach,
			Strength: 0.4,
			Distance: g.params.SentenceOrbit,
		})
	}
}

func (g *Graph) addSeed(seed analysis.GraphSeed, topics []aggregate.Topic) {
	// seed ids that refer to nodes the projector derives itself
	alias := make(map[string]string)
	for sid, nid := range g.sentenceNodes {
		alias[sid] = nid
	}

	for _, n := range seed.Nodes {
		switch NodeType(n.Type) {
		case TypeSentence:
			if nid, ok := g.sentenceNodes[n.ID]; ok {
				alias[n.ID] = nid
			}
			continue
		case TypeTopic:
			if tid := matchTopic(n.Label, topics); tid != "" {
				alias[n.ID] = tid
			}
			continue
		}
		if n.ID == "" {
			continue
		}
		if !g.addNode(Node{
			ID:         n.ID,
			Label:      n.Label,
			Type:       NodeType(n.Type),
			Properties: n.Properties,
		}) {
			logger.Debug("[Graph] Skipping seed node with duplicate id", "id", n.ID)
		}
	}

	resolve := func(id string) (string, bool) {
		if nid, ok := alias[id]; ok {
			return nid, true
		}
		_, ok := g.nodeIndex[id]
		return id, ok
	}

	seen := make(map[string]struct{}, len(seed.Edges))
	for i, e := range seed.Edges {
		from, ok1 := resolve(e.From)
		to, ok2 := resolve(e.To)
		if !ok1 || !ok2 || from == to {
			logger.Debug("[Graph] Dropping dangling seed edge", "id", e.ID, "from", e.From, "to", e.To)
			continue
		}
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("seed_%d", i)
		}
		if _, dup := seen[id]; dup {
			id = fmt.Sprintf("%s_%d", id, i)
		}
		seen[id] = struct{}{}
		g.addEdge(Edge{
			ID:         id,
			From:       from,
			To:         to,
			Type:       e.Type,
			Properties: e.Properties,
			Strength:   0.4,
			Distance:   g.params.SeedDistance,
		})
	}
}

// matchTopic maps a seed topic label onto the largest projected topic
// with the same slug.
func matchTopic(label string, topics []aggregate.Topic) string {
	slug := analysis.Slug(strings.TrimSpace(label))
	if slug == "" {
		return ""
	}
	for _, t := range topics {
		if t.Slug == slug {
			return t.ID
		}
	}
	return ""
}
