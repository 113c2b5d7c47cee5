package domain

import (
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

// DefaultFloor is the minimum value a resolved cell may take. Extrapolation
// below the sampled range can produce negative intensities; flooring at a
// small positive epsilon instead of zero keeps downstream consumers safe from
// division-by-zero and log-domain failures.
const DefaultFloor = 1e-10

type resolveOptions struct {
	floor       float64
	parallelism int
}

// ResolveOption adjusts the behavior of Resolve.
type ResolveOption func(*resolveOptions)

// WithFloor overrides the minimum resolved value (default DefaultFloor).
func WithFloor(eps float64) ResolveOption {
	return func(o *resolveOptions) { o.floor = eps }
}

// WithParallelism resolves up to n distance rows concurrently. Cells are
// independent, so any n is safe; n <= 1 keeps resolution sequential.
func WithParallelism(n int) ResolveOption {
	return func(o *resolveOptions) { o.parallelism = n }
}

// Resolve reduces a curve set to a (distance × class) matrix of intensity
// values at the target exceedance probability.
//
// For each (distance, class) pair, samples with duplicate adjacent
// coordinates on either axis are masked out, the remaining points are
// interpolated piecewise-linearly in ascending probability order, and
// thresholds outside the sampled range follow the nearest boundary segment's
// line. Results are floored at the configured epsilon.
//
// Resolve fails fast with a typed error on shape mismatches, non-finite
// inputs, or any pair left with fewer than two usable samples. Inputs are
// never mutated.
func Resolve(cs CurveSet, threshold float64, opts ...ResolveOption) (ResultMatrix, error) {
	o := resolveOptions{floor: DefaultFloor, parallelism: 1}
	for _, opt := range opts {
		opt(&o)
	}

	distances, classes, err := cs.Dims()
	if err != nil {
		return ResultMatrix{}, err
	}
	if err := checkFinite(cs, threshold); err != nil {
		return ResultMatrix{}, err
	}

	probValid := probMask(cs.Probs)
	result := NewResultMatrix(distances, classes)

	resolveRow := func(d int) error {
		for v := 0; v < classes; v++ {
			ivl, err := resolveCell(cs, probValid, threshold, o.floor, d, v)
			if err != nil {
				return err
			}
			result.set(d, v, ivl)
		}
		return nil
	}

	if o.parallelism > 1 && distances > 1 {
		var g errgroup.Group
		g.SetLimit(o.parallelism)
		for d := 0; d < distances; d++ {
			g.Go(func() error { return resolveRow(d) })
		}
		if err := g.Wait(); err != nil {
			return ResultMatrix{}, err
		}
		return result, nil
	}

	for d := 0; d < distances; d++ {
		if err := resolveRow(d); err != nil {
			return ResultMatrix{}, err
		}
	}
	return result, nil
}

// probMask marks the probability samples usable for interpolation: each index
// is valid when its probability differs from the next one. The final index is
// always invalid on this axis. The asymmetry against the intensity mask (see
// resolveCell) is a compatibility rule inherited from the original resolver
// and must not be "fixed" without coordinating with downstream consumers.
func probMask(probs []float64) []bool {
	mask := make([]bool, len(probs))
	for i := 0; i+1 < len(probs); i++ {
		mask[i] = probs[i] != probs[i+1]
	}
	return mask
}

// resolveCell runs the filter → interpolate → clamp pipeline for one
// (distance, class) pair.
func resolveCell(cs CurveSet, probValid []bool, threshold, floor float64, d, v int) (float64, error) {
	n := len(cs.Probs)
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)

	// Intensity-axis mask: an index is valid when its value differs from the
	// next one; the final index is always valid. Combined elementwise with
	// the probability mask.
	for i := 0; i < n; i++ {
		ivlValid := i == n-1 || cs.IVLs[i][d][v] != cs.IVLs[i+1][d][v]
		if probValid[i] && ivlValid {
			xs = append(xs, cs.Probs[i])
			ys = append(ys, cs.IVLs[i][d][v])
		}
	}

	if len(xs) < 2 {
		return 0, &InsufficientSamplesError{Distance: d, Class: v, Valid: len(xs)}
	}

	sort.Sort(&byProb{xs: xs, ys: ys})

	ivl := interpolate(xs, ys, threshold)
	if ivl < floor {
		ivl = floor
	}
	return ivl, nil
}

// interpolate evaluates the piecewise-linear curve through (xs, ys) at x,
// with xs sorted ascending. Outside [xs[0], xs[len-1]] the nearest boundary
// segment's line is extended rather than clamping to the range.
func interpolate(xs, ys []float64, x float64) float64 {
	i := sort.SearchFloat64s(xs, x)
	if i < len(xs) && xs[i] == x {
		// Exact sample hit: return the stored value, bypassing arithmetic
		// that could perturb it.
		return ys[i]
	}
	if i == 0 {
		i = 1
	} else if i == len(xs) {
		i = len(xs) - 1
	}

	x0, x1 := xs[i-1], xs[i]
	y0, y1 := ys[i-1], ys[i]
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

// checkFinite rejects NaN/Inf anywhere in the inputs.
func checkFinite(cs CurveSet, threshold float64) error {
	if !isFinite(threshold) {
		return &InvalidInputError{Field: "threshold", Sample: -1, Distance: -1, Class: -1}
	}
	for s, p := range cs.Probs {
		if !isFinite(p) {
			return &InvalidInputError{Field: "probs", Sample: s, Distance: -1, Class: -1}
		}
	}
	for s := range cs.IVLs {
		for d := range cs.IVLs[s] {
			for v, val := range cs.IVLs[s][d] {
				if !isFinite(val) {
					return &InvalidInputError{Field: "ivls", Sample: s, Distance: d, Class: v}
				}
			}
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// byProb sorts paired (probability, intensity) samples by ascending
// probability.
type byProb struct {
	xs, ys []float64
}

func (p *byProb) Len() int           { return len(p.xs) }
func (p *byProb) Less(i, j int) bool { return p.xs[i] < p.xs[j] }
func (p *byProb) Swap(i, j int) {
	p.xs[i], p.xs[j] = p.xs[j], p.xs[i]
	p.ys[i], p.ys[j] = p.ys[j], p.ys[i]
}
