package domain

import "fmt"

// DimensionError reports a shape mismatch in a curve set: a probability axis
// whose length differs from the tensor's sample dimension, a ragged tensor,
// or axis labels that do not match the tensor extent.
type DimensionError struct {
	Axis string
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch on %s axis: want %d, got %d", e.Axis, e.Want, e.Got)
}

// InsufficientSamplesError reports a (distance, class) pair left with fewer
// than two usable samples after duplicate filtering, which makes linear
// interpolation undefined.
type InsufficientSamplesError struct {
	Distance int
	Class    int
	Valid    int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("distance %d, class %d: %d valid samples after filtering, need at least 2",
		e.Distance, e.Class, e.Valid)
}

// InvalidInputError reports a non-finite value (NaN or ±Inf) in the inputs.
// Sample, Distance, and Class are -1 when the offending value is not part of
// the tensor (the threshold or a probability sample).
type InvalidInputError struct {
	Field    string
	Sample   int
	Distance int
	Class    int
}

func (e *InvalidInputError) Error() string {
	if e.Sample < 0 {
		return fmt.Sprintf("non-finite value in %s", e.Field)
	}
	if e.Distance < 0 {
		return fmt.Sprintf("non-finite value in %s at sample %d", e.Field, e.Sample)
	}
	return fmt.Sprintf("non-finite value in %s at sample %d, distance %d, class %d",
		e.Field, e.Sample, e.Distance, e.Class)
}
