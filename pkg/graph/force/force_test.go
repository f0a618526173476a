package force

import (
	"math"
	"sync/atomic"
	"testing"
	"time"
)

func dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func TestNewPlacesNodes(t *testing.T) {
	sim := New([]Node{
		{ID: "a"},
		{ID: "b"},
		{ID: "c", Fixed: true, FX: 50, FY: -20},
		{ID: "d", X: 5, Y: 5},
	}, nil, DefaultParams())

	pos := sim.Positions()
	if pos["a"] == pos["b"] {
		t.Fatalf("unplaced nodes share a position: %+v", pos)
	}
	if pos["c"] != (Point{X: 50, Y: -20}) {
		t.Fatalf("fixed node at %+v, want its anchor", pos["c"])
	}
	if pos["d"] != (Point{X: 5, Y: 5}) {
		t.Fatalf("placed node moved to %+v", pos["d"])
	}
}

func TestLinkConverges(t *testing.T) {
	p := DefaultParams()
	p.CenterStrength = 0
	sim := New(
		[]Node{{ID: "a", X: -200, Y: 0}, {ID: "b", X: 200, Y: 0}},
		[]Link{{Source: "a", Target: "b", Distance: 72, Strength: 1}},
		p,
	)
	sim.Tick(300)

	pos := sim.Positions()
	if d := dist(pos["a"], pos["b"]); math.Abs(d-72) > 15 {
		t.Fatalf("linked distance = %.2f, want about 72", d)
	}
}

func TestChargeRepels(t *testing.T) {
	p := DefaultParams()
	p.CenterStrength = 0
	sim := New([]Node{
		{ID: "a", X: -1, Y: 0, Charge: -40},
		{ID: "b", X: 1, Y: 0, Charge: -40},
	}, nil, p)
	sim.Tick(50)

	pos := sim.Positions()
	if d := dist(pos["a"], pos["b"]); d <= 2 {
		t.Fatalf("charged nodes did not separate: %.2f", d)
	}
}

func TestCollideSeparates(t *testing.T) {
	p := DefaultParams()
	p.CenterStrength = 0
	sim := New([]Node{
		{ID: "a", X: 0, Y: 0.5, Radius: 30},
		{ID: "b", X: 0, Y: -0.5, Radius: 30},
	}, nil, p)
	sim.Tick(100)

	pos := sim.Positions()
	if d := dist(pos["a"], pos["b"]); d < 50 {
		t.Fatalf("colliding nodes overlap: %.2f", d)
	}
}

func TestAnchorHolds(t *testing.T) {
	sim := New([]Node{
		{ID: "hub", Charge: -1000, Radius: 110},
		{ID: "spoke", Charge: -1000, Radius: 30},
	}, []Link{{Source: "hub", Target: "spoke", Distance: 72, Strength: 1}}, DefaultParams())

	if !sim.Anchor("hub", 420, 0) {
		t.Fatalf("Anchor() on a known node returned false")
	}
	if sim.Anchor("ghost", 0, 0) {
		t.Fatalf("Anchor() on an unknown node returned true")
	}
	sim.Tick(120)

	n, _ := sim.Node("hub")
	if n.X != 420 || n.Y != 0 || n.VX != 0 || n.VY != 0 {
		t.Fatalf("anchored node drifted: %+v", n)
	}

	sim.ReleaseAll()
	if n, _ := sim.Node("hub"); n.Fixed {
		t.Fatalf("ReleaseAll() left node fixed")
	}
}

func TestAlphaDecay(t *testing.T) {
	sim := New([]Node{{ID: "a"}}, nil, DefaultParams())
	if sim.CurrentAlpha() != 1 {
		t.Fatalf("initial alpha = %v", sim.CurrentAlpha())
	}
	sim.Tick(301)
	if a := sim.CurrentAlpha(); a >= DefaultParams().AlphaMin {
		t.Fatalf("alpha after 301 ticks = %v, want < alphaMin", a)
	}
	if a := sim.Alpha(0.3).CurrentAlpha(); a != 0.3 {
		t.Fatalf("Alpha(0.3) left alpha at %v", a)
	}
}

func TestRestartRunsUntilCool(t *testing.T) {
	p := DefaultParams()
	p.TickInterval = time.Millisecond
	p.AlphaDecay = 0.5
	sim := New([]Node{{ID: "a"}, {ID: "b"}}, nil, p)

	var ticks atomic.Int32
	sim.OnTick(func() { ticks.Add(1) })
	sim.Alpha(0.3).Restart()

	deadline := time.Now().Add(2 * time.Second)
	for sim.Running() {
		if time.Now().After(deadline) {
			t.Fatalf("simulation did not cool down")
		}
		time.Sleep(time.Millisecond)
	}
	if ticks.Load() == 0 {
		t.Fatalf("OnTick callback never ran")
	}
}

func TestPartialParams(t *testing.T) {
	tests := []struct {
		name string
		in   Params
		want Params
	}{
		{"zero", Params{}, DefaultParams()},
		{"no tick interval", Params{VelocityDecay: 0.4, AlphaMin: 0.01, AlphaDecay: 0.5}, Params{VelocityDecay: 0.4, AlphaMin: 0.01, AlphaDecay: 0.5, TickInterval: DefaultParams().TickInterval}},
		{"negative tick interval", Params{VelocityDecay: 0.4, TickInterval: -time.Second}, Params{VelocityDecay: 0.4, TickInterval: DefaultParams().TickInterval}},
		{"no velocity decay", Params{TickInterval: time.Millisecond, AlphaDecay: 0}, Params{VelocityDecay: DefaultParams().VelocityDecay, TickInterval: time.Millisecond}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := withDefaults(tc.in); got != tc.want {
				t.Fatalf("withDefaults() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRestartWithoutTickInterval(t *testing.T) {
	sim := New([]Node{{ID: "a"}, {ID: "b"}}, nil, Params{VelocityDecay: 0.6, AlphaMin: 0.001, AlphaDecay: 0.5})

	var ticks atomic.Int32
	sim.OnTick(func() { ticks.Add(1) })
	sim.Alpha(0.3).Restart()

	deadline := time.Now().Add(2 * time.Second)
	for sim.Running() {
		if time.Now().After(deadline) {
			t.Fatalf("simulation did not cool down")
		}
		time.Sleep(time.Millisecond)
	}
	if ticks.Load() == 0 {
		t.Fatalf("OnTick callback never ran")
	}
}

func TestStop(t *testing.T) {
	p := DefaultParams()
	p.TickInterval = time.Millisecond
	p.AlphaDecay = 0
	sim := New([]Node{{ID: "a"}}, nil, p)

	sim.Restart()
	if !sim.Running() {
		t.Fatalf("Restart() did not start the ticker")
	}
	sim.Stop()
	sim.Stop()
	if sim.Running() {
		t.Fatalf("Stop() left the ticker running")
	}
}
