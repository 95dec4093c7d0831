package layout

import (
	"math"
	"testing"

	"github.com/vanderheijden86/entropy/pkg/model"
	"github.com/vanderheijden86/entropy/pkg/testutil"

	"gonum.org/v1/gonum/spatial/r2"
)

func dist(s *Store, a, b string) float64 {
	ba, _ := s.Body(a)
	bb, _ := s.Body(b)
	return math.Hypot(ba.X-bb.X, ba.Y-bb.Y)
}

func runUntilStopped(t *testing.T, sim *Simulation, limit int) int {
	t.Helper()
	n := 0
	for sim.Tick() {
		n++
		if n > limit {
			t.Fatalf("simulation still running after %d ticks (alpha %v)", limit, sim.Alpha())
		}
	}
	return n
}

func TestConvergence(t *testing.T) {
	gen := testutil.NewDefault()
	g := gen.ToGraph(gen.Random(50, 0.06))

	store := NewStore(r2.Vec{X: 400, Y: 300}, 200, 3)
	store.Reconcile(g.Nodes, g.Edges)
	sim := NewSimulation(store, DefaultConfig())

	var peak float64
	for sim.Tick() {
		peak = math.Max(peak, sim.Energy())
		if sim.Ticks() > 300 {
			t.Fatalf("still running after 300 ticks (alpha %v)", sim.Alpha())
		}
	}

	if sim.Alpha() >= DefaultConfig().AlphaMin {
		t.Errorf("alpha = %v, want < %v", sim.Alpha(), DefaultConfig().AlphaMin)
	}
	if final := sim.Energy(); final > peak*0.01 {
		t.Errorf("final energy %v is not below 1%% of peak %v", final, peak)
	}
	for _, p := range store.Positions() {
		testutil.AssertFinite(t, p.ID, p.X, p.Y)
	}
}

func TestCoincidentNodesStayFinite(t *testing.T) {
	gen := testutil.NewDefault()
	g := gen.ToGraph(gen.Grid(4, 4))

	store := NewStore(r2.Vec{}, 1, 1)
	store.Reconcile(g.Nodes, g.Edges)
	for _, b := range store.bodies {
		b.X, b.Y = 0, 0
	}
	sim := NewSimulation(store, DefaultConfig())
	sim.Tick()

	for _, p := range store.Positions() {
		testutil.AssertFinite(t, p.ID, p.X, p.Y)
	}
	a, _ := store.Body("g0_0")
	b, _ := store.Body("g3_3")
	if a.X == b.X && a.Y == b.Y {
		t.Error("coincident nodes were not separated")
	}
}

func TestPinHoldsPosition(t *testing.T) {
	gen := testutil.NewDefault()
	g := gen.ToGraph(gen.Star(6))

	store := NewStore(r2.Vec{X: 400, Y: 300}, 100, 5)
	store.Reconcile(g.Nodes, g.Edges)
	store.Pin("hub", 123.5, -42)
	sim := NewSimulation(store, DefaultConfig())

	for i := 0; i < 50; i++ {
		sim.Tick()
		hub, _ := store.Body("hub")
		if hub.X != 123.5 || hub.Y != -42 {
			t.Fatalf("tick %d: pinned hub at (%v,%v)", i, hub.X, hub.Y)
		}
		if hub.VX != 0 || hub.VY != 0 {
			t.Fatalf("tick %d: pinned hub has velocity (%v,%v)", i, hub.VX, hub.VY)
		}
	}

	store.Unpin("hub")
	sim.Reheat()
	sim.Tick()
	if hub, _ := store.Body("hub"); hub.X == 123.5 && hub.Y == -42 {
		t.Error("released hub did not move although its spokes pull on it")
	}
}

func TestSingleAxisPin(t *testing.T) {
	store := newTestStore()
	store.Reconcile(nodes("a", "b"), []model.Edge{edge("e1", "a", "b")})
	x := 10.0
	store.SetPin("a", &x, nil)
	sim := NewSimulation(store, DefaultConfig())

	before, _ := store.Body("a")
	for i := 0; i < 20; i++ {
		sim.Tick()
	}
	after, _ := store.Body("a")
	if after.X != 10 {
		t.Errorf("pinned axis moved: X = %v", after.X)
	}
	if after.Y == before.Y {
		t.Error("free axis should keep integrating")
	}
}

// linkBalance is the length at which a lone unit-strength link settles:
// k(d-L) + (axis/2)d = |charge|/d, with k the per-endpoint spring share.
func linkBalance(cfg Config) float64 {
	k := cfg.LinkStrength * linkBias
	a := k + cfg.AxisStrength/2
	kl := k * cfg.LinkDistance
	return (kl + math.Sqrt(kl*kl+4*a*math.Abs(cfg.Charge))) / (2 * a)
}

func TestLinkBalanceNearTarget(t *testing.T) {
	cfg := DefaultConfig()
	d := linkBalance(cfg)
	if math.Abs(d-cfg.LinkDistance) > cfg.LinkDistance*0.1 {
		t.Errorf("default link rests at %v, want within 10%% of %v", d, cfg.LinkDistance)
	}
	testutil.AssertNear(t, "preview balance", linkBalance(PreviewConfig()), 111.9, 0.1)
}

func TestLinkDistanceScenario(t *testing.T) {
	presets := map[string]Config{"default": DefaultConfig(), "preview": PreviewConfig()}
	for name, cfg := range presets {
		want := linkBalance(cfg)
		minSep := 2 * cfg.CollideRadius * 0.95
		for seed := int64(1); seed <= 5; seed++ {
			store := NewStore(r2.Vec{X: 400, Y: 300}, cfg.SeedJitter, seed)
			store.Reconcile(nodes("A", "B", "C"), []model.Edge{edge("ab", "A", "B")})
			sim := NewSimulation(store, cfg)
			runUntilStopped(t, sim, 1000)

			ab := dist(store, "A", "B")
			if math.Abs(ab-want) > want*0.1 {
				t.Errorf("%s seed %d: d(A,B) = %.1f, want within 10%% of %.1f", name, seed, ab, want)
			}
			for _, pair := range [][2]string{{"A", "C"}, {"B", "C"}} {
				if d := dist(store, pair[0], pair[1]); d < minSep {
					t.Errorf("%s seed %d: d(%s,%s) = %.1f, want >= %.1f", name, seed, pair[0], pair[1], d, minSep)
				}
			}
		}
	}
}

func TestPinnedNonFiniteNodeSnapsToPin(t *testing.T) {
	store := newTestStore()
	store.Reconcile(nodes("a", "b"), []model.Edge{edge("ab", "a", "b")})
	store.byID["a"].X = math.NaN()
	store.Pin("a", 10, 10)
	sim := NewSimulation(store, DefaultConfig())

	for i := 0; i < 5; i++ {
		sim.Tick()
	}
	a, _ := store.Body("a")
	if a.X != 10 || a.Y != 10 || a.VX != 0 || a.VY != 0 {
		t.Errorf("pinned node at (%v,%v) v=(%v,%v), want (10,10) at rest", a.X, a.Y, a.VX, a.VY)
	}
	b, _ := store.Body("b")
	testutil.AssertFinite(t, "b", b.X, b.Y)
}

func TestHalfPinnedNonFiniteStaysIsolated(t *testing.T) {
	store := newTestStore()
	store.Reconcile(nodes("a", "b"), nil)
	store.byID["a"].X, store.byID["a"].Y = math.NaN(), math.Inf(1)
	y := 20.0
	store.SetPin("a", nil, &y)
	sim := NewSimulation(store, DefaultConfig())

	sim.Tick()
	a, _ := store.Body("a")
	if a.Y != 20 || !math.IsNaN(a.X) {
		t.Errorf("a = (%v,%v), want pinned Y with X untouched", a.X, a.Y)
	}
	b, _ := store.Body("b")
	testutil.AssertFinite(t, "b", b.X, b.Y, b.VX, b.VY)
}

func TestReleaseKeepsForcesActing(t *testing.T) {
	store := newTestStore()
	store.Reconcile(nodes("A", "B"), []model.Edge{edge("ab", "A", "B")})
	sim := NewSimulation(store, DefaultConfig())
	for i := 0; i < 10; i++ {
		sim.Tick()
	}

	sim.SetAlphaTarget(DefaultConfig().DragAlphaTarget)
	store.Pin("A", 500, 500)
	sim.Tick()
	store.Unpin("A")
	sim.SetAlphaTarget(0)
	sim.Tick()

	a, _ := store.Body("A")
	if a.VX == 0 && a.VY == 0 {
		t.Error("A should pick up velocity after release; B still pulls on it")
	}
}

func TestStopAndRestart(t *testing.T) {
	store := newTestStore()
	store.Reconcile(nodes("a", "b"), nil)
	sim := NewSimulation(store, DefaultConfig())

	sim.Stop()
	before := store.Positions()
	if sim.Tick() {
		t.Fatal("stopped simulation ticked")
	}
	after := store.Positions()
	for i := range before {
		if before[i] != after[i] {
			t.Error("stopped tick changed positions")
		}
	}

	sim.Restart()
	if !sim.Tick() {
		t.Error("restarted simulation should tick")
	}

	sim.SetAlpha(0.001)
	sim.Tick()
	if sim.Running() {
		t.Error("simulation should stop under AlphaMin")
	}
	sim.Reheat()
	if !sim.Running() || sim.Alpha() != DefaultConfig().ReheatAlpha {
		t.Errorf("Reheat: running=%v alpha=%v", sim.Running(), sim.Alpha())
	}
}

func TestEmptyGraphStops(t *testing.T) {
	sim := NewSimulation(newTestStore(), DefaultConfig())
	if sim.Tick() {
		t.Error("empty simulation should not tick")
	}
	if sim.Running() {
		t.Error("empty simulation should stop")
	}
}

func TestAlphaTargetHoldsTemperature(t *testing.T) {
	store := newTestStore()
	store.Reconcile(nodes("a", "b"), nil)
	sim := NewSimulation(store, DefaultConfig())
	sim.SetAlphaTarget(0.3)

	for i := 0; i < 500; i++ {
		sim.Tick()
	}
	if !sim.Running() {
		t.Fatal("simulation cooled although alphaTarget is above AlphaMin")
	}
	testutil.AssertNear(t, "alpha", sim.Alpha(), 0.3, 1e-3)
}

func TestNonFiniteNodeIsolated(t *testing.T) {
	store := newTestStore()
	store.Reconcile(nodes("a", "b", "c"), []model.Edge{edge("ab", "a", "b"), edge("bc", "b", "c")})
	store.byID["c"].X = math.NaN()
	sim := NewSimulation(store, DefaultConfig())

	for i := 0; i < 5; i++ {
		sim.Tick()
	}
	for _, id := range []string{"a", "b"} {
		b, _ := store.Body(id)
		testutil.AssertFinite(t, id, b.X, b.Y, b.VX, b.VY)
	}
}

func TestBarnesHutMatchesExactDirection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CollideRadius = 0
	cfg.CenterStrength = 0
	cfg.AxisStrength = 0

	positions := func(bh bool) (Body, Body) {
		c := cfg
		if bh {
			c.BarnesHutMin = 2
		} else {
			c.Theta = 0
		}
		store := newTestStore()
		store.Reconcile(nodes("a", "b"), nil)
		store.byID["a"].X, store.byID["a"].Y = 0, 0
		store.byID["b"].X, store.byID["b"].Y = 30, 40
		sim := NewSimulation(store, c)
		sim.Tick()
		a, _ := store.Body("a")
		b, _ := store.Body("b")
		return a, b
	}

	ea, eb := positions(false)
	ba, bb := positions(true)
	if ea.VX >= 0 || ea.VY >= 0 || eb.VX <= 0 || eb.VY <= 0 {
		t.Fatalf("exact charge should push a and b apart: a=%+v b=%+v", ea, eb)
	}
	testutil.AssertNear(t, "a.VX", ba.VX, ea.VX, 1e-6)
	testutil.AssertNear(t, "a.VY", ba.VY, ea.VY, 1e-6)
	testutil.AssertNear(t, "b.VX", bb.VX, eb.VX, 1e-6)
}

func TestChargeCutoff(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CollideRadius = 0
	cfg.CenterStrength = 0
	cfg.AxisStrength = 0

	store := newTestStore()
	store.Reconcile(nodes("a", "b"), nil)
	store.byID["a"].X, store.byID["a"].Y = 0, 0
	store.byID["b"].X, store.byID["b"].Y = cfg.DistanceMax+1, 0
	sim := NewSimulation(store, cfg)
	sim.Tick()

	if e := sim.Energy(); e != 0 {
		t.Errorf("nodes beyond DistanceMax should not interact, energy %v", e)
	}
}

func TestCursorRepels(t *testing.T) {
	cfg := PreviewConfig()
	cfg.CenterStrength = 0
	store := newTestStore()
	store.Reconcile(nodes("a"), nil)
	store.byID["a"].X, store.byID["a"].Y = 100, 100
	sim := NewSimulation(store, cfg)
	sim.SetAlpha(0)
	sim.SetCursor(r2.Vec{X: 90, Y: 100})

	if sim.Alpha() != cfg.CursorAlpha {
		t.Errorf("cursor should nudge alpha to %v, got %v", cfg.CursorAlpha, sim.Alpha())
	}
	sim.Tick()
	if a, _ := store.Body("a"); a.X <= 100 {
		t.Errorf("node should be pushed away from the cursor, X = %v", a.X)
	}

	sim.ClearCursor()
	store.byID["a"].VX = 0
	sim.Tick()
	if a, _ := store.Body("a"); a.VX != 0 {
		t.Errorf("cleared cursor still acts: VX = %v", a.VX)
	}
}

func TestScatterReheats(t *testing.T) {
	store := newTestStore()
	store.Reconcile(nodes("a", "b"), nil)
	sim := NewSimulation(store, DefaultConfig())
	sim.Stop()

	sim.Scatter(r2.Vec{}, r2.Vec{X: 800, Y: 600})
	if !sim.Running() || sim.Alpha() != 1 {
		t.Errorf("Scatter should reheat, running=%v alpha=%v", sim.Running(), sim.Alpha())
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if err := PreviewConfig().Validate(); err != nil {
		t.Errorf("preview config invalid: %v", err)
	}

	bad := DefaultConfig()
	bad.VelocityRetention = 1
	if err := bad.Validate(); err == nil {
		t.Error("retention of 1 never converges and should be rejected")
	}
	bad = DefaultConfig()
	bad.DistanceMax = -1
	if err := bad.Validate(); err == nil {
		t.Error("negative distance should be rejected")
	}
}
