package domain

// SequenceRange is a contiguous, inclusive slice of a sequence's value space
// returned by a single storage get-and-increment call.
type SequenceRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
	Step  int64 `json:"step"`
}

// NewSequenceRange builds a range from the given fields as-is. A zero step is
// not normalized; Len and Values treat such a range as empty.
func NewSequenceRange(start, end, step int64) SequenceRange {
	return SequenceRange{Start: start, End: end, Step: step}
}

// Len returns the number of values in the range,:
// floor(|end-start|/|step|) + 1. Returns 0 if the direction from start to end
// disagrees with the sign of step (an empty range).
func (r SequenceRange) Len() int64 {
	if r.Step == 0 {
		return 0
	}
	diff := r.End - r.Start
	if r.Step > 0 && diff < 0 {
		return 0
	}
	if r.Step < 0 && diff > 0 {
		return 0
	}
	abs := diff
	if abs < 0 {
		abs = -abs
	}
	step := r.Step
	if step < 0 {
		step = -step
	}
	return abs/step + 1
}

// Values materializes every value in the range in iteration order:
// start, start+step, start+2*step, ... until end is passed.
func (r SequenceRange) Values() []int64 {
	n := r.Len()
	if n <= 0 {
		return nil
	}
	out := make([]int64, 0, n)
	v := r.Start
	for i := int64(0); i < n; i++ {
		out = append(out, v)
		v += r.Step
	}
	return out
}

// SequenceState is the durable record backing a single counter-based
// sequence (used by both increment configs and formatted configs' rotating
// sequence keys).
type SequenceState struct {
	Name         string `json:"name"`
	IDType       IDType `json:"id_type"`
	CurrentValue int64  `json:"current_value"`
	Version      int64  `json:"version"`
	UpdatedAtMs  int64  `json:"updated_at_ms"`
}

// NewSequenceState constructs the initial state for initialize().
func NewSequenceState(name string, idType IDType, start int64) SequenceState {
	return SequenceState{Name: name, IDType: idType, CurrentValue: start}
}
