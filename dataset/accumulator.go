package dataset

// Accumulator collects per-file sequences for the final normalization pass.
// Add returns the extended accumulator; the receiver is left untouched.
type Accumulator struct {
	inputs  [][][]complex128
	targets [][][]complex128
	files   []FileSummary
}

// NewAccumulator returns an empty accumulator
func NewAccumulator() Accumulator {
	return Accumulator{}
}

// Add folds one file's result into the accumulator
func (a Accumulator) Add(r FileResult) Accumulator {
	return Accumulator{
		inputs:  append(a.inputs[:len(a.inputs):len(a.inputs)], r.Inputs...),
		targets: append(a.targets[:len(a.targets):len(a.targets)], r.Targets...),
		files:   append(a.files[:len(a.files):len(a.files)], r.Summary),
	}
}

// Len returns the number of collected training examples
func (a Accumulator) Len() int {
	return len(a.inputs)
}

// Inputs returns the collected input sequences in file order
func (a Accumulator) Inputs() [][][]complex128 {
	return a.inputs
}

// Targets returns the collected target sequences in file order
func (a Accumulator) Targets() [][][]complex128 {
	return a.targets
}

// Files returns one summary per folded file
func (a Accumulator) Files() []FileSummary {
	return a.files
}
