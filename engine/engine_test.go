package engine

import (
	"math"
	"testing"

	"github.com/lixenwraith/contagion/parameter"
	"github.com/lixenwraith/contagion/vmath"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Population = 100
	cfg.InitialInfected = 5
	cfg.Seed = 42
	return cfg
}

func TestConservation(t *testing.T) {
	e, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pop := e.Config().Population
	if got := e.Snapshot().Total(); got != pop {
		t.Fatalf("initial total = %d, want %d", got, pop)
	}

	// Irregular dt sequence: counts must always sum to the fixed population
	dts := []float64{0.1, 0.05, 0.1, 0.02, 0.1, 0.07, 0.1, 0.1, 0.01, 0.1}
	for step := 0; step < 200; step++ {
		e.Step(dts[step%len(dts)])
		if got := e.Snapshot().Total(); got != pop {
			t.Fatalf("step %d: total = %d, want %d", step, got, pop)
		}
	}
}

func TestTerminalStatesNeverChange(t *testing.T) {
	cfg := testConfig()
	cfg.VaccinatedRatio = 0.3
	cfg.RecoveryTime = 1 // force recoveries early

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	terminal := make(map[int]State)
	for step := 0; step < 300; step++ {
		e.Step(0.1)
		for _, a := range e.Agents() {
			if prev, ok := terminal[a.ID]; ok && a.State != prev {
				t.Fatalf("step %d: agent %d left terminal state %v for %v", step, a.ID, prev, a.State)
			}
			if a.State.Terminal() {
				terminal[a.ID] = a.State
			}
		}
	}
	if len(terminal) == 0 {
		t.Fatal("scenario produced no terminal agents to check")
	}
}

func TestTransmissionProbability(t *testing.T) {
	const base, radius = 0.4, 25.0

	if p := transmissionProbability(base, radius, radius, false); p != 0 {
		t.Errorf("p at d=r is %v, want 0", p)
	}
	if p := transmissionProbability(base, radius*2, radius, false); p != 0 {
		t.Errorf("p beyond radius is %v, want 0", p)
	}
	if p := transmissionProbability(base, 0, radius, false); math.Abs(p-base) > 1e-12 {
		t.Errorf("p at d=0 is %v, want %v", p, base)
	}

	// Monotone decrease within the radius, bounded by [0, base]
	prev := base
	for d := 1.0; d < radius; d++ {
		p := transmissionProbability(base, d, radius, false)
		if p < 0 || p > base {
			t.Fatalf("p(%v) = %v outside [0, %v]", d, p, base)
		}
		if p >= prev {
			t.Fatalf("p(%v) = %v not decreasing (prev %v)", d, p, prev)
		}
		prev = p
	}

	// Super-spreader doubling
	p := transmissionProbability(base, 10, radius, false)
	ps := transmissionProbability(base, 10, radius, true)
	if math.Abs(ps-2*p) > 1e-12 {
		t.Errorf("super-spreader p = %v, want %v", ps, 2*p)
	}
}

func TestDeterminismUnderFixedSeed(t *testing.T) {
	cfg := testConfig()
	cfg.VaccinatedRatio = 0.1
	cfg.AsymptomaticRatio = 0.25

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dts := []float64{0.1, 0.03, 0.1, 0.08, 0.1}
	for step := 0; step < 500; step++ {
		dt := dts[step%len(dts)]
		a.Step(dt)
		b.Step(dt)
		if a.Snapshot() != b.Snapshot() {
			t.Fatalf("step %d: snapshots diverged: %+v vs %+v", step, a.Snapshot(), b.Snapshot())
		}
	}

	sa, sb := a.Timeseries(), b.Timeseries()
	if len(sa) != len(sb) {
		t.Fatalf("timeseries lengths diverged: %d vs %d", len(sa), len(sb))
	}
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("sample %d diverged: %+v vs %+v", i, sa[i], sb[i])
		}
	}
}

// Scenario from the epidemic contract: a tiny fully-connected population with
// certain transmission and a 5 s recovery must be entirely recovered after
// 10 simulated seconds.
func TestFullOutbreakRecovers(t *testing.T) {
	cfg := Config{
		Population:       10,
		InitialInfected:  1,
		Speed:            1.0,
		TransmissionProb: 1.0,
		RecoveryTime:     5,
		IncubationTime:   1,
		Width:            800,
		Height:           600,
		Seed:             7,
	}
	cfg.InfectionRadius = math.Hypot(cfg.Width, cfg.Height) // all-pairs adjacency

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if e.SeededInfected() != 1 {
		t.Fatalf("seeded %d infections, want 1", e.SeededInfected())
	}

	for step := 0; step < 100; step++ {
		e.Step(0.1)
	}

	c := e.Snapshot()
	want := StateCounts{Recovered: 10}
	if c != want {
		t.Errorf("final snapshot = %+v, want %+v", c, want)
	}
}

func TestPartialSeeding(t *testing.T) {
	// Everyone vaccinated: the seeding retry budget runs out without error
	cfg := testConfig()
	cfg.VaccinatedRatio = 1.0
	cfg.InitialInfected = 10

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("partial seeding must not fail init: %v", err)
	}
	if e.SeededInfected() != 0 {
		t.Errorf("seeded %d infections with a fully vaccinated population", e.SeededInfected())
	}

	c := e.Snapshot()
	if c.Infected != 0 || c.Asymptomatic != 0 {
		t.Errorf("snapshot shows infections despite exhausted seeding: %+v", c)
	}
	if c.Vaccinated != cfg.Population {
		t.Errorf("vaccinated = %d, want %d", c.Vaccinated, cfg.Population)
	}
}

func TestSeedingCountsObservable(t *testing.T) {
	cfg := testConfig()
	cfg.InitialInfected = 7
	cfg.AsymptomaticRatio = 0.5

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c := e.Snapshot()
	if got := c.Infected + c.Asymptomatic; got != e.SeededInfected() {
		t.Errorf("snapshot carriers = %d, SeededInfected = %d", got, e.SeededInfected())
	}
	if e.SeededInfected() != 7 {
		t.Errorf("seeded %d, want full 7 with ample healthy agents", e.SeededInfected())
	}
}

func TestSampleOrderingAndCadence(t *testing.T) {
	e, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for step := 0; step < 200; step++ {
		e.Step(0.1)
	}

	samples := e.Timeseries()
	if len(samples) == 0 {
		t.Fatal("no samples recorded over 20 simulated seconds")
	}

	for i := 1; i < len(samples); i++ {
		if samples[i].T < samples[i-1].T {
			t.Fatalf("timestamps regress at %d: %v after %v", i, samples[i].T, samples[i-1].T)
		}
		gap := samples[i].T - samples[i-1].T
		if math.Abs(gap-parameter.SampleInterval) > 1e-9 {
			t.Fatalf("sample gap %v at %d, want %v", gap, i, parameter.SampleInterval)
		}
	}
}

func TestMovementKeepsAgentsInBounds(t *testing.T) {
	cfg := testConfig()
	cfg.Speed = 5 // aggressive movement to exercise reflection

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for step := 0; step < 500; step++ {
		e.Step(0.1)
		for _, a := range e.Agents() {
			if a.X < 0 || a.X > cfg.Width || a.Y < 0 || a.Y > cfg.Height {
				t.Fatalf("step %d: agent %d out of bounds at (%v, %v)", step, a.ID, a.X, a.Y)
			}
		}
	}
}

func TestVelocityStaysUnitNormalized(t *testing.T) {
	e, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for step := 0; step < 100; step++ {
		e.Step(0.1)
	}
	for _, a := range e.Agents() {
		if m := vmath.Magnitude(a.VX, a.VY); math.Abs(m-1) > 1e-9 {
			t.Fatalf("agent %d velocity magnitude %v, want 1", a.ID, m)
		}
	}
}

func TestStepIgnoresNonPositiveDt(t *testing.T) {
	e, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	before := e.Snapshot()
	e.Step(0)
	e.Step(-1)
	if e.Time() != 0 {
		t.Errorf("simulated time advanced on non-positive dt: %v", e.Time())
	}
	if e.Snapshot() != before {
		t.Error("state changed on non-positive dt")
	}
}

func TestSetSuperSpreader(t *testing.T) {
	e, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, a := range e.Agents() {
		if a.SuperSpreader {
			t.Fatal("super-spreader flag must default to false for all agents")
		}
	}

	if !e.SetSuperSpreader(3, true) {
		t.Fatal("SetSuperSpreader rejected a valid ID")
	}
	if !e.Agents()[3].SuperSpreader {
		t.Error("flag not set")
	}
	if e.SetSuperSpreader(-1, true) || e.SetSuperSpreader(len(e.Agents()), true) {
		t.Error("SetSuperSpreader accepted an unknown ID")
	}
}

func TestConfigSuperSpreadersApplied(t *testing.T) {
	cfg := testConfig()
	cfg.SuperSpreaders = []int{0, 9}

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	agents := e.Agents()
	if !agents[0].SuperSpreader || !agents[9].SuperSpreader {
		t.Error("configured super-spreaders not flagged")
	}
	if agents[1].SuperSpreader {
		t.Error("unlisted agent flagged")
	}
}

func TestVaccinatedFractionAssigned(t *testing.T) {
	cfg := testConfig()
	cfg.VaccinatedRatio = 0.25
	cfg.InitialInfected = 0

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c := e.Snapshot()
	want := int(cfg.VaccinatedRatio * float64(cfg.Population))
	if c.Vaccinated != want {
		t.Errorf("vaccinated = %d, want %d", c.Vaccinated, want)
	}
}

func TestNoSpreadBeyondRadius(t *testing.T) {
	// Zero transmission probability: the epidemic never grows beyond the seeds
	cfg := testConfig()
	cfg.TransmissionProb = 0

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	seeded := e.SeededInfected()

	for step := 0; step < 50; step++ {
		e.Step(0.1)
		c := e.Snapshot()
		if c.Infected+c.Asymptomatic+c.Recovered > seeded {
			t.Fatalf("step %d: infections grew with zero transmission probability", step)
		}
	}
}
