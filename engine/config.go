package engine

import (
	"fmt"

	"github.com/lixenwraith/contagion/parameter"
)

// Config is the immutable-per-run parameter set captured when an engine is
// created. Changing a Config after creation never affects a running engine;
// agents copy the recovery/incubation thresholds at infection time.
type Config struct {
	// Population is the fixed number of agents for the lifetime of the run
	Population int `json:"population"`

	// InitialInfected is the requested number of seed infections; fewer may be
	// seeded when the retry budget runs out (partial seeding, non-fatal)
	InitialInfected int `json:"initial_infected"`

	// Speed is the movement speed multiplier applied on top of the engine's
	// speed constant
	Speed float64 `json:"speed"`

	// InfectionRadius is the contact radius in world units
	InfectionRadius float64 `json:"infection_radius"`

	// TransmissionProb is the per-contact transmission probability at zero
	// distance; falls off linearly to zero at InfectionRadius
	TransmissionProb float64 `json:"transmission_prob"`

	// RecoveryTime is the simulated seconds from infection to recovery
	RecoveryTime float64 `json:"recovery_time"`

	// IncubationTime is captured per agent at infection time alongside the
	// recovery threshold
	IncubationTime float64 `json:"incubation_time"`

	// VaccinatedRatio is the fraction of the population assigned Vaccinated at
	// creation, before seeding
	VaccinatedRatio float64 `json:"vaccinated_ratio"`

	// AsymptomaticRatio is the chance an exposure produces an Asymptomatic
	// carrier instead of a symptomatic Infected
	AsymptomaticRatio float64 `json:"asymptomatic_ratio"`

	// Width, Height are the field bounds in world units
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Seed initializes the engine's random source; identical seed and config
	// reproduce identical runs
	Seed uint64 `json:"seed"`

	// SuperSpreaders lists agent IDs whose transmissions are amplified.
	// No automatic assignment exists; the flag defaults to false everywhere.
	SuperSpreaders []int `json:"super_spreaders,omitempty"`
}

// DefaultConfig returns a runnable mid-sized configuration.
func DefaultConfig() Config {
	return Config{
		Population:       200,
		InitialInfected:  3,
		Speed:            1.0,
		InfectionRadius:  parameter.DefaultInfectionRadius,
		TransmissionProb: parameter.DefaultTransmissionProb,
		RecoveryTime:     parameter.DefaultRecoveryTime,
		IncubationTime:   parameter.DefaultIncubationTime,
		Width:            parameter.DefaultFieldWidth,
		Height:           parameter.DefaultFieldHeight,
		Seed:             1,
	}
}

// ConfigError reports a single invalid configuration parameter. A failed
// validation leaves no partially constructed engine behind.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s %s", e.Field, e.Reason)
}

// Validate checks the parameter ranges, returning the first violation.
func (c Config) Validate() error {
	switch {
	case c.Population <= 0:
		return &ConfigError{"Population", "must be > 0"}
	case c.InitialInfected < 0:
		return &ConfigError{"InitialInfected", "must be >= 0"}
	case c.InfectionRadius <= 0:
		return &ConfigError{"InfectionRadius", "must be > 0"}
	case c.TransmissionProb < 0 || c.TransmissionProb > 1:
		return &ConfigError{"TransmissionProb", "must be in [0,1]"}
	case c.VaccinatedRatio < 0 || c.VaccinatedRatio > 1:
		return &ConfigError{"VaccinatedRatio", "must be in [0,1]"}
	case c.AsymptomaticRatio < 0 || c.AsymptomaticRatio > 1:
		return &ConfigError{"AsymptomaticRatio", "must be in [0,1]"}
	case c.RecoveryTime <= 0:
		return &ConfigError{"RecoveryTime", "must be > 0"}
	case c.IncubationTime < 0:
		return &ConfigError{"IncubationTime", "must be >= 0"}
	case c.Speed < 0:
		return &ConfigError{"Speed", "must be >= 0"}
	case c.Width <= 0:
		return &ConfigError{"Width", "must be > 0"}
	case c.Height <= 0:
		return &ConfigError{"Height", "must be > 0"}
	}
	return nil
}
