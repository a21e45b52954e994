package engine

// Sample is one timestamped population count record, the shape consumed by the
// export, import and analysis collaborators.
type Sample struct {
	T            float64 `json:"t"`
	Healthy      int     `json:"healthy"`
	Infected     int     `json:"infected"`
	Asymptomatic int     `json:"asymptomatic"`
	Recovered    int     `json:"recovered"`
	Vaccinated   int     `json:"vaccinated"`
}

// Recorder is an append-only ordered sequence of samples with non-decreasing
// timestamps. The engine appends one sample per sampling interval; wholesale
// replacement is reserved for the data-import collaborator and bypasses
// simulated stepping entirely.
type Recorder struct {
	samples []Sample
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{samples: make([]Sample, 0, 256)}
}

// Append adds a sample at the end of the sequence.
func (r *Recorder) Append(s Sample) {
	r.samples = append(r.samples, s)
}

// Len returns the number of recorded samples.
func (r *Recorder) Len() int {
	return len(r.samples)
}

// Samples returns a copy of the recorded sequence in order.
func (r *Recorder) Samples() []Sample {
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Replace discards the recorded sequence and installs the given one.
// Intended for the import collaborator only; the step path never replaces.
func (r *Recorder) Replace(samples []Sample) {
	r.samples = make([]Sample, len(samples))
	copy(r.samples, samples)
}
