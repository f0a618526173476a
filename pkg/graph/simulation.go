package graph

import (
	"github.com/OFFIS-RIT/rhetorik/pkg/graph/force"
)

// Force model constants.
const (
	ChargeDefault  = -1000.0
	ChargeSentence = -40.0

	CollideTopic    = 110.0
	CollideWheel    = 30.0
	CollideSentence = 10.0
)

// NewSimulation creates the force simulation of a graph. The caller owns
// the simulation and must Stop it when the graph is replaced.
func NewSimulation(g *Graph) *force.Simulation {
	return NewSimulationWith(g, force.DefaultParams())
}

// NewSimulationWith creates the force simulation of a graph with custom
// integrator parameters.
func NewSimulationWith(g *Graph, p force.Params) *force.Simulation {
	nodes := make([]force.Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		fn := force.Node{ID: n.ID, Charge: ChargeDefault, Radius: CollideSentence}
		switch n.Type {
		case TypeSentence:
			fn.Charge = ChargeSentence
		case TypeTopic:
			fn.Radius = CollideTopic
		case TypeWheel:
			fn.Radius = CollideWheel
		}
		nodes = append(nodes, fn)
	}

	links := make([]force.Link, 0, len(g.Edges))
	for _, e := range g.Edges {
		links = append(links, force.Link{
			Source:   e.From,
			Target:   e.To,
			Distance: e.Distance,
			Strength: e.Strength,
		})
	}

	return force.New(nodes, links, p)
}

// ApplyLayout frees every node, pins the anchors of the layout and
// reheats the simulation. The simulation keeps running across view
// changes.
func ApplyLayout(sim *force.Simulation, l Layout) {
	if sim == nil {
		return
	}
	sim.ReleaseAll()
	for id, p := range l.Anchors {
		sim.Anchor(id, p.X, p.Y)
	}
	sim.Alpha(0.3).Restart()
}

// Settle pins the anchors of a layout and runs the simulation
// synchronously for the given number of ticks.
func Settle(sim *force.Simulation, l Layout, ticks int) {
	sim.ReleaseAll()
	for id, p := range l.Anchors {
		sim.Anchor(id, p.X, p.Y)
	}
	sim.Tick(ticks)
}
