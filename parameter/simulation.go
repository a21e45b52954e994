package parameter

// Field & Movement
const (
	// DefaultFieldWidth is the simulation field width in world units
	DefaultFieldWidth = 800.0

	// DefaultFieldHeight is the simulation field height in world units
	DefaultFieldHeight = 600.0

	// SpeedConstant converts the unit velocity into world units per simulated second
	// before the per-run speed multiplier is applied
	SpeedConstant = 30.0

	// VelocityJitter is the half-width of the uniform perturbation added to each
	// velocity component every movement update, before renormalization
	VelocityJitter = 0.3

	// DtClamp is the largest simulated timestep drivers should feed a single Step;
	// larger values destabilize the discretization
	DtClamp = 0.1
)

// Sampling
const (
	// SampleInterval is the simulated-time cadence at which population counts are
	// appended to the timeseries
	SampleInterval = 0.5

	// SampleTimeRound is the rounding granularity for recorded sample timestamps
	SampleTimeRound = 0.1
)

// Spatial Grid
const (
	// MinCellSize is the lower bound on grid cell size; the effective cell size is
	// max(MinCellSize, 2*InfectionRadius) so that any pair within the infection
	// radius shares a cell or sits in adjacent cells
	MinCellSize = 10.0
)

// Seeding
const (
	// SeedAttemptFactor caps initial-infection seeding at SeedAttemptFactor*population
	// random draws; running out of attempts is a non-fatal partial seeding
	SeedAttemptFactor = 5
)

// Epidemic Defaults
const (
	// DefaultTransmissionProb is the per-contact base transmission probability at
	// zero distance
	DefaultTransmissionProb = 0.35

	// DefaultInfectionRadius is the default contact radius in world units
	DefaultInfectionRadius = 25.0

	// DefaultRecoveryTime is the default simulated seconds from infection to recovery
	DefaultRecoveryTime = 12.0

	// DefaultIncubationTime is the default simulated seconds captured as the
	// incubation threshold at infection time
	DefaultIncubationTime = 4.0

	// SuperSpreaderFactor doubles the transmission probability of flagged sources
	SuperSpreaderFactor = 2.0
)
