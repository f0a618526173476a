// Package force is a small velocity-Verlet force simulation with link,
// many-body, centering and collision forces, modeled on d3-force.
//
// A Simulation is a scoped resource: create it for one graph, Stop it when
// the graph is replaced. Tick can be driven manually (tests, batch
// layout) or by the background ticker started with Restart.
package force

import (
	"math"
	"sync"
	"time"
)

// Point is a position in layout space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a simulated body. Charge is the many-body strength (negative
// repels), Radius the collision radius.
type Node struct {
	ID     string
	X, Y   float64
	VX, VY float64
	Charge float64
	Radius float64

	Fixed  bool
	FX, FY float64
}

// Link is a spring between two node ids.
type Link struct {
	Source   string
	Target   string
	Distance float64
	Strength float64
}

// Params configures the integrator and the global forces.
type Params struct {
	CenterStrength  float64
	CollideStrength float64
	VelocityDecay   float64
	AlphaMin        float64
	AlphaDecay      float64
	AlphaTarget     float64
	TickInterval    time.Duration
	Seed            uint32
}

// DefaultParams mirror the d3-force defaults with a weak centering pull.
func DefaultParams() Params {
	return Params{
		CenterStrength:  0.01,
		CollideStrength: 1,
		VelocityDecay:   0.6,
		AlphaMin:        0.001,
		AlphaDecay:      1 - math.Pow(0.001, 1.0/300),
		TickInterval:    16 * time.Millisecond,
		Seed:            1,
	}
}

func withDefaults(p Params) Params {
	d := DefaultParams()
	if p == (Params{}) {
		return d
	}
	if p.VelocityDecay == 0 {
		p.VelocityDecay = d.VelocityDecay
	}
	if p.TickInterval <= 0 {
		p.TickInterval = d.TickInterval
	}
	return p
}

type link struct {
	source, target int
	distance       float64
	strength       float64
	bias           float64
}

// Simulation holds the simulated nodes. All methods are safe for
// concurrent use.
type Simulation struct {
	mu     sync.Mutex
	nodes  []Node
	index  map[string]int
	links  []link
	params Params
	alpha  float64
	rand   uint32
	onTick func()

	running bool
	stop    chan struct{}
}

const (
	initialRadius = 10.0
	distanceMin2  = 1.0
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// New creates a simulation. Nodes at the origin are placed on a
// phyllotaxis spiral, fixed nodes start at their anchor. Links with
// unknown endpoints are ignored. A zero Params means DefaultParams; a
// zero VelocityDecay or a non-positive TickInterval takes the default.
func New(nodes []Node, links []Link, p Params) *Simulation {
	p = withDefaults(p)
	s := &Simulation{
		nodes:  make([]Node, len(nodes)),
		index:  make(map[string]int, len(nodes)),
		params: p,
		alpha:  1,
		rand:   p.Seed,
	}
	copy(s.nodes, nodes)

	for i := range s.nodes {
		n := &s.nodes[i]
		s.index[n.ID] = i
		switch {
		case n.Fixed:
			n.X, n.Y = n.FX, n.FY
		case n.X == 0 && n.Y == 0:
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * initialAngle
			n.X, n.Y = r*math.Cos(a), r*math.Sin(a)
		}
	}

	count := make([]int, len(s.nodes))
	for _, l := range links {
		si, ok1 := s.index[l.Source]
		ti, ok2 := s.index[l.Target]
		if !ok1 || !ok2 || si == ti {
			continue
		}
		s.links = append(s.links, link{source: si, target: ti, distance: l.Distance, strength: l.Strength})
		count[si]++
		count[ti]++
	}
	for i := range s.links {
		l := &s.links[i]
		l.bias = float64(count[l.source]) / float64(count[l.source]+count[l.target])
	}

	return s
}

// jiggle returns a tiny non-zero offset from a deterministic LCG.
func (s *Simulation) jiggle() float64 {
	s.rand = s.rand*1664525 + 1013904223
	return (float64(s.rand)/4294967296 - 0.5) * 1e-6
}

// Tick advances the simulation n steps regardless of alpha.
func (s *Simulation) Tick(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for range n {
		s.step()
	}
}

func (s *Simulation) step() {
	s.alpha += (s.params.AlphaTarget - s.alpha) * s.params.AlphaDecay

	s.applyLinks()
	s.applyCharge()
	s.applyCenter()
	s.applyCollide()

	for i := range s.nodes {
		n := &s.nodes[i]
		if n.Fixed {
			n.X, n.Y = n.FX, n.FY
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= s.params.VelocityDecay
		n.VY *= s.params.VelocityDecay
		n.X += n.VX
		n.Y += n.VY
	}
}

func (s *Simulation) applyLinks() {
	for _, l := range s.links {
		src, tgt := &s.nodes[l.source], &s.nodes[l.target]
		x := tgt.X + tgt.VX - src.X - src.VX
		y := tgt.Y + tgt.VY - src.Y - src.VY
		if x == 0 {
			x = s.jiggle()
		}
		if y == 0 {
			y = s.jiggle()
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - l.distance) / d * s.alpha * l.strength
		x, y = x*k, y*k
		tgt.VX -= x * l.bias
		tgt.VY -= y * l.bias
		src.VX += x * (1 - l.bias)
		src.VY += y * (1 - l.bias)
	}
}

func (s *Simulation) applyCharge() {
	for i := range s.nodes {
		ni := &s.nodes[i]
		for j := range s.nodes {
			if i == j {
				continue
			}
			nj := &s.nodes[j]
			x := nj.X - ni.X
			y := nj.Y - ni.Y
			if x == 0 {
				x = s.jiggle()
			}
			if y == 0 {
				y = s.jiggle()
			}
			l := x*x + y*y
			if l < distanceMin2 {
				l = math.Sqrt(distanceMin2 * l)
			}
			ni.VX += x * nj.Charge * s.alpha / l
			ni.VY += y * nj.Charge * s.alpha / l
		}
	}
}

func (s *Simulation) applyCenter() {
	k := s.params.CenterStrength * s.alpha
	for i := range s.nodes {
		n := &s.nodes[i]
		n.VX -= n.X * k
		n.VY -= n.Y * k
	}
}

func (s *Simulation) applyCollide() {
	for i := range s.nodes {
		ni := &s.nodes[i]
		xi, yi := ni.X+ni.VX, ni.Y+ni.VY
		ri := ni.Radius
		for j := i + 1; j < len(s.nodes); j++ {
			nj := &s.nodes[j]
			rj := nj.Radius
			r := ri + rj
			x := xi - nj.X - nj.VX
			y := yi - nj.Y - nj.VY
			l := x*x + y*y
			if l >= r*r {
				continue
			}
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			l = math.Sqrt(l)
			k := (r - l) / l * s.params.CollideStrength
			x, y = x*k, y*k
			share := rj * rj / (ri*ri + rj*rj)
			ni.VX += x * share
			ni.VY += y * share
			nj.VX -= x * (1 - share)
			nj.VY -= y * (1 - share)
		}
	}
}

// Alpha sets the current alpha and returns the simulation for chaining,
// e.g. sim.Alpha(0.3).Restart().
func (s *Simulation) Alpha(a float64) *Simulation {
	s.mu.Lock()
	s.alpha = a
	s.mu.Unlock()
	return s
}

// CurrentAlpha returns the current alpha.
func (s *Simulation) CurrentAlpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// OnTick registers the callback invoked after every background tick.
func (s *Simulation) OnTick(fn func()) {
	s.mu.Lock()
	s.onTick = fn
	s.mu.Unlock()
}

// Restart starts the background ticker if it is not running. The ticker
// stops by itself once alpha falls below AlphaMin.
func (s *Simulation) Restart() *Simulation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return s
	}
	s.running = true
	s.stop = make(chan struct{})
	go s.loop(s.stop)
	return s
}

func (s *Simulation) loop(stop chan struct{}) {
	ticker := time.NewTicker(s.params.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		if s.stop != stop || !s.running {
			s.mu.Unlock()
			return
		}
		s.step()
		fn := s.onTick
		done := s.alpha < s.params.AlphaMin
		if done {
			s.running = false
		}
		s.mu.Unlock()

		if fn != nil {
			fn()
		}
		if done {
			return
		}
	}
}

// Stop halts the background ticker and drops the tick callback.
func (s *Simulation) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTick = nil
	if s.running {
		close(s.stop)
		s.running = false
	}
}

// Running reports whether the background ticker is active.
func (s *Simulation) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Anchor pins a node at (x, y).
func (s *Simulation) Anchor(id string, x, y float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return false
	}
	n := &s.nodes[i]
	n.Fixed, n.FX, n.FY = true, x, y
	return true
}

// Release frees a pinned node.
func (s *Simulation) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[id]; ok {
		s.nodes[i].Fixed = false
	}
}

// ReleaseAll frees every node.
func (s *Simulation) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.nodes {
		s.nodes[i].Fixed = false
	}
}

// Node returns a copy of one node.
func (s *Simulation) Node(id string) (Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return Node{}, false
	}
	return s.nodes[i], true
}

// Positions returns the current position of every node.
func (s *Simulation) Positions() map[string]Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Point, len(s.nodes))
	for _, n := range s.nodes {
		out[n.ID] = Point{X: n.X, Y: n.Y}
	}
	return out
}
