// Package engine implements the epidemic simulation core: the per-agent
// disease state machine, the spatial neighbor index, and the fixed-phase step
// algorithm (movement, infection spread, progression, sampling).
package engine

import (
	"math"

	"github.com/lixenwraith/contagion/parameter"
	"github.com/lixenwraith/contagion/vmath"
)

// StateCounts is the per-state population tally of one instant.
type StateCounts struct {
	Healthy      int
	Infected     int
	Asymptomatic int
	Recovered    int
	Vaccinated   int
}

// Total returns the population covered by the tally.
func (c StateCounts) Total() int {
	return c.Healthy + c.Infected + c.Asymptomatic + c.Recovered + c.Vaccinated
}

// Engine owns the agent collection, the spatial grid and the timeseries
// recorder, and advances the epidemic one Step at a time. Each Step is a
// complete transition from one consistent state to the next; no partial-step
// state is observable. The engine performs no wall-clock timing of its own:
// the driver supplies dt and is expected to clamp it (parameter.DtClamp).
//
// A single Engine is a single logical writer: callers must serialize Step
// against the read accessors. Distinct engines share no state and may run in
// parallel without coordination.
type Engine struct {
	cfg  Config
	rng  *vmath.FastRand
	grid *SpatialGrid

	agents   []Agent
	recorder *Recorder

	simTime     float64
	sampleTimer float64
	seeded      int

	// scratch buffers reused across steps to avoid per-step allocation
	sourceBuf   []int
	neighborBuf []int
}

// New validates the configuration and builds a fully initialized engine:
// agents placed uniformly with random unit velocities, the vaccinated subset
// assigned, initial infections seeded, and the grid built once. A validation
// failure returns a *ConfigError and no engine. The random source is seeded
// from cfg.Seed; identical configs produce identical runs.
func New(cfg Config) (*Engine, error) {
	return NewWithSource(cfg, vmath.NewFastRand(cfg.Seed))
}

// NewWithSource is New with an explicitly injected random source, for callers
// that need to share or pre-advance a generator.
func NewWithSource(cfg Config, rng *vmath.FastRand) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cellSize := math.Max(parameter.MinCellSize, 2*cfg.InfectionRadius)

	e := &Engine{
		cfg:         cfg,
		rng:         rng,
		grid:        NewSpatialGrid(cfg.Width, cfg.Height, cellSize),
		agents:      make([]Agent, cfg.Population),
		recorder:    NewRecorder(),
		sourceBuf:   make([]int, 0, 64),
		neighborBuf: make([]int, 0, 64),
	}

	for i := range e.agents {
		a := &e.agents[i]
		a.ID = i
		a.X = e.rng.Range(0, cfg.Width)
		a.Y = e.rng.Range(0, cfg.Height)
		a.VX, a.VY = e.rng.UnitVector()
	}

	e.vaccinate()
	e.seedInfections()

	for _, id := range cfg.SuperSpreaders {
		e.SetSuperSpreader(id, true)
	}

	e.grid.Rebuild(e.agents)
	return e, nil
}

// vaccinate assigns Vaccinated to a random subset sized by the configured
// fraction, using a partial Fisher-Yates pass so exactly the requested count
// is drawn without replacement.
func (e *Engine) vaccinate() {
	count := int(e.cfg.VaccinatedRatio * float64(e.cfg.Population))
	if count <= 0 {
		return
	}

	perm := make([]int, e.cfg.Population)
	for i := range perm {
		perm[i] = i
	}
	for k := 0; k < count; k++ {
		j := k + e.rng.Intn(e.cfg.Population-k)
		perm[k], perm[j] = perm[j], perm[k]
		e.agents[perm[k]].State = Vaccinated
	}
}

// seedInfections infects up to InitialInfected healthy agents by repeated
// random index draws, capped at SeedAttemptFactor*population attempts.
// Exhausting the budget (e.g. a high vaccinated fraction) is a non-fatal
// partial seeding, observable via SeededInfected and the snapshot counts.
func (e *Engine) seedInfections() {
	maxAttempts := parameter.SeedAttemptFactor * e.cfg.Population
	attempts := 0
	for e.seeded < e.cfg.InitialInfected && attempts < maxAttempts {
		attempts++
		idx := e.rng.Intn(e.cfg.Population)
		asym := e.rng.Float64() < e.cfg.AsymptomaticRatio
		if e.agents[idx].Infect(&e.cfg, asym) {
			e.seeded++
		}
	}
}

// Step advances the simulation by dt simulated seconds through the four
// ordered phases. The order is a semantic contract: transmission decisions
// must use post-movement geometry from the same tick.
func (e *Engine) Step(dt float64) {
	if dt <= 0 {
		return
	}
	e.simTime += dt

	e.move(dt)
	e.grid.Rebuild(e.agents)
	e.spread()
	e.progress(dt)
	e.sample(dt)
}

// move integrates positions, reflects off the field bounds, and applies a
// small random perturbation to each velocity before renormalizing it.
func (e *Engine) move(dt float64) {
	scale := dt * parameter.SpeedConstant * e.cfg.Speed
	for i := range e.agents {
		a := &e.agents[i]

		a.X += a.VX * scale
		a.Y += a.VY * scale

		if a.X < 0 || a.X > e.cfg.Width {
			a.X = vmath.Clamp(a.X, 0, e.cfg.Width)
			a.VX = -a.VX
		}
		if a.Y < 0 || a.Y > e.cfg.Height {
			a.Y = vmath.Clamp(a.Y, 0, e.cfg.Height)
			a.VY = -a.VY
		}

		a.VX += e.rng.Range(-parameter.VelocityJitter, parameter.VelocityJitter)
		a.VY += e.rng.Range(-parameter.VelocityJitter, parameter.VelocityJitter)
		a.VX, a.VY = vmath.Normalize2D(a.VX, a.VY)
		if a.VX == 0 && a.VY == 0 {
			// jitter cancelled the velocity exactly; redraw a direction
			a.VX, a.VY = e.rng.UnitVector()
		}
	}
}

// spread evaluates transmission from every agent contagious at phase start to
// its healthy grid neighbors within the infection radius.
func (e *Engine) spread() {
	e.sourceBuf = e.sourceBuf[:0]
	for i := range e.agents {
		if e.agents[i].State.Contagious() {
			e.sourceBuf = append(e.sourceBuf, i)
		}
	}

	for _, si := range e.sourceBuf {
		src := &e.agents[si]
		e.neighborBuf = e.grid.Neighbors(e.agents, si, e.neighborBuf[:0])

		for _, ni := range e.neighborBuf {
			dst := &e.agents[ni]
			if dst.State != Healthy {
				continue
			}
			d := vmath.Distance(src.X, src.Y, dst.X, dst.Y)
			p := transmissionProbability(e.cfg.TransmissionProb, d, e.cfg.InfectionRadius, src.SuperSpreader)
			if p > 0 && e.rng.Float64() < p {
				asym := e.rng.Float64() < e.cfg.AsymptomaticRatio
				dst.Infect(&e.cfg, asym)
			}
		}
	}
}

// transmissionProbability is the per-contact infection chance: linear falloff
// from base at zero distance to zero at the radius, doubled for super-spreader
// sources.
func transmissionProbability(base, distance, radius float64, super bool) float64 {
	if distance >= radius {
		return 0
	}
	p := base * (1 - distance/radius)
	if super {
		p *= parameter.SuperSpreaderFactor
	}
	return p
}

// progress advances infection timers and recovers agents past their threshold.
func (e *Engine) progress(dt float64) {
	for i := range e.agents {
		e.agents[i].Progress(dt)
	}
}

// sample accumulates dt and appends one snapshot to the timeseries each time
// the sampling interval elapses.
func (e *Engine) sample(dt float64) {
	e.sampleTimer += dt
	if e.sampleTimer < parameter.SampleInterval {
		return
	}
	e.sampleTimer = 0

	c := e.Snapshot()
	e.recorder.Append(Sample{
		T:            roundTo(e.simTime, parameter.SampleTimeRound),
		Healthy:      c.Healthy,
		Infected:     c.Infected,
		Asymptomatic: c.Asymptomatic,
		Recovered:    c.Recovered,
		Vaccinated:   c.Vaccinated,
	})
}

func roundTo(v, granularity float64) float64 {
	return math.Round(v/granularity) * granularity
}

// Snapshot returns the current per-state counts. Pure read.
func (e *Engine) Snapshot() StateCounts {
	var c StateCounts
	for i := range e.agents {
		switch e.agents[i].State {
		case Healthy:
			c.Healthy++
		case Infected:
			c.Infected++
		case Asymptomatic:
			c.Asymptomatic++
		case Recovered:
			c.Recovered++
		case Vaccinated:
			c.Vaccinated++
		}
	}
	return c
}

// Timeseries returns a copy of the accumulated sample sequence in order.
func (e *Engine) Timeseries() []Sample {
	return e.recorder.Samples()
}

// Recorder exposes the underlying recorder for the data-import collaborator.
func (e *Engine) Recorder() *Recorder {
	return e.recorder
}

// Agents returns the live agent slice for pull-based renderers.
// Read-only view: callers must not mutate entries or retain the slice across
// Step calls they do not serialize themselves.
func (e *Engine) Agents() []Agent {
	return e.agents
}

// Config returns the configuration captured at creation.
func (e *Engine) Config() Config {
	return e.cfg
}

// Time returns the accumulated simulated seconds.
func (e *Engine) Time() float64 {
	return e.simTime
}

// SeededInfected returns how many initial infections were actually seeded;
// lower than InitialInfected under partial seeding.
func (e *Engine) SeededInfected() int {
	return e.seeded
}

// SetSuperSpreader flags or unflags an agent's transmission amplifier.
// Returns false for an unknown ID.
func (e *Engine) SetSuperSpreader(id int, flag bool) bool {
	if id < 0 || id >= len(e.agents) {
		return false
	}
	e.agents[id].SuperSpreader = flag
	return true
}
