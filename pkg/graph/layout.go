package graph

import (
	"math"

	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
	"github.com/OFFIS-RIT/rhetorik/pkg/graph/force"
)

// Mode is the presentation state of the graph.
type Mode string

const (
	ModeOverview Mode = "overview"
	ModeEmotion  Mode = "emotion"
	ModeTopic    Mode = "topic"
	ModeSentence Mode = "sentence"
	ModeActor    Mode = "actor"
)

// ParseMode maps a string onto a Mode.
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(s); m {
	case ModeOverview, ModeEmotion, ModeTopic, ModeSentence, ModeActor:
		return m, true
	}
	return "", false
}

// View is the current mode plus the selection it refers to.
type View struct {
	Mode       Mode
	Emotion    analysis.EmotionLabel
	TopicID    string
	SentenceID string
	ActorID    string
}

// Zoom is the target viewport transform: the layout point to center on
// and the scale to zoom to.
type Zoom struct {
	Center force.Point `json:"center"`
	Scale  float64     `json:"scale"`
}

// Layout is the anchor overlay of one view. Nodes without an anchor are
// free. Zoom is nil when the view keeps the current viewport.
type Layout struct {
	Anchors map[string]force.Point `json:"anchors"`
	Zoom    *Zoom                  `json:"zoom,omitempty"`
}

// Layout computes the anchor overlay of a view. The graph itself is not
// modified.
//
// overview pins every Topic on a ring of OuterRadius (largest topic at the
// top, clockwise) and its seven spokes on a circle of WheelRadius around
// it. topic pins the selected topic at the origin and spreads its spokes
// to WheelRadius*TopicZoom. All other modes free every node.
func (g *Graph) Layout(v View) Layout {
	l := Layout{Anchors: make(map[string]force.Point)}

	switch v.Mode {
	case ModeOverview:
		n := len(g.topics)
		for i, tid := range g.topics {
			angle := float64(i)/float64(n)*2*math.Pi - math.Pi/2
			center := force.Point{
				X: g.params.OuterRadius * math.Cos(angle),
				Y: g.params.OuterRadius * math.Sin(angle),
			}
			l.Anchors[tid] = center
			g.pinWheel(l.Anchors, tid, center, g.params.WheelRadius)
		}
		l.Zoom = &Zoom{Scale: g.clampScale(g.params.OverviewScale)}

	case ModeTopic:
		if _, ok := g.wheels[v.TopicID]; !ok {
			return l
		}
		l.Anchors[v.TopicID] = force.Point{}
		g.pinWheel(l.Anchors, v.TopicID, force.Point{}, g.params.WheelRadius*g.params.TopicZoom)
		l.Zoom = &Zoom{Scale: g.clampScale(g.params.TopicScale)}
	}

	return l
}

func (g *Graph) pinWheel(anchors map[string]force.Point, topicID string, center force.Point, radius float64) {
	spokes := g.wheels[topicID]
	for i, wid := range spokes {
		anchors[wid] = SpokePosition(center, radius, i)
	}
}

// SpokePosition returns the canonical position of spoke i around center.
func SpokePosition(center force.Point, radius float64, i int) force.Point {
	angle := float64(i)/float64(len(analysis.WheelOrder))*2*math.Pi - math.Pi/2
	return force.Point{
		X: center.X + radius*math.Cos(angle),
		Y: center.Y + radius*math.Sin(angle),
	}
}

func (g *Graph) clampScale(s float64) float64 {
	return math.Max(g.params.MinScale, math.Min(g.params.MaxScale, s))
}
