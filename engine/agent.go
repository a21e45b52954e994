package engine

// State is the disease state of a single agent. Transitions are one-directional:
// Healthy -> Infected/Asymptomatic (exposure) or Healthy -> Vaccinated (at
// creation only); Infected/Asymptomatic -> Recovered once the captured recovery
// threshold is reached. Recovered and Vaccinated are terminal.
type State uint8

const (
	Healthy State = iota
	Infected
	Asymptomatic
	Recovered
	Vaccinated
)

var stateNames = [...]string{"healthy", "infected", "asymptomatic", "recovered", "vaccinated"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether the state never changes again
func (s State) Terminal() bool {
	return s == Recovered || s == Vaccinated
}

// Contagious reports whether the state transmits on contact
func (s State) Contagious() bool {
	return s == Infected || s == Asymptomatic
}

// Agent is one simulated individual. Position is mutated only by the movement
// phase; velocity stays unit-normalized between updates.
type Agent struct {
	ID     int
	X, Y   float64
	VX, VY float64
	State  State

	// InfectedElapsed is simulated seconds since exposure; meaningful only
	// while the agent is contagious
	InfectedElapsed float64

	// RecoveryThreshold and IncubationThreshold are copies of the active
	// configuration captured at infection time, so later parameter changes do
	// not retroactively alter agents already infected
	RecoveryThreshold   float64
	IncubationThreshold float64

	// SuperSpreader doubles the transmission probability of this agent's
	// contacts while contagious
	SuperSpreader bool
}

// Infect exposes the agent, transitioning to Infected or Asymptomatic.
// No-op unless the agent is exactly Healthy. Returns whether it took effect.
func (a *Agent) Infect(cfg *Config, asymptomatic bool) bool {
	if a.State != Healthy {
		return false
	}
	if asymptomatic {
		a.State = Asymptomatic
	} else {
		a.State = Infected
	}
	a.InfectedElapsed = 0
	a.RecoveryThreshold = cfg.RecoveryTime
	a.IncubationThreshold = cfg.IncubationTime
	return true
}

// Progress advances the infection timer by dt and transitions to Recovered
// once the captured threshold is reached. Returns whether the agent recovered.
func (a *Agent) Progress(dt float64) bool {
	if !a.State.Contagious() {
		return false
	}
	a.InfectedElapsed += dt
	if a.InfectedElapsed >= a.RecoveryThreshold {
		a.State = Recovered
		return true
	}
	return false
}
