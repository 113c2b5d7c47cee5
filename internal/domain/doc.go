// Package domain models probabilistic seismic hazard curves and resolves
// them to scalar intensity values at target exceedance probabilities.
//
// # Data Source
//
// Hazard-curve sets originate from PSHA runs on an OpenQuake engine driven by
// the upstream forecast service. Each run produces, per distance bin and
// vulnerability class, a hazard curve: intensity value levels (IVLs) sampled
// at a shared axis of exceedance probabilities. The upstream service publishes
// one JSON document per calculation to the Kafka source topic, or, for large
// calculations, a reference document carrying only the calculation ID, in
// which case the curves are fetched from the engine API on demand.
//
// # Wire Conventions
//
// Curve-set document:
//
//	{
//	  "calc_id":               "psha-2026-0142",
//	  "imt":                   "MMI",
//	  "investigation_time":    1.0,
//	  "probs":                 [0.9, 0.7, 0.5, 0.3, 0.1],
//	  "ivls":                  [[[..],..],..],   // [sample][distance][class]
//	  "distance_bins":         [2.5, 7.5, 12.5], // optional, km
//	  "vulnerability_classes": ["A", "B", "C"]   // optional
//	}
//
// The probability axis is shared by every (distance, class) pair and must
// have the same length as the tensor's sample dimension. Probabilities are
// conventionally in [0, 1] but are not range-checked here; the axis usually
// arrives in descending order because hazard curves are monotonically
// non-increasing in intensity.
//
// # Threshold Resolution
//
// [Resolve] reduces a curve set to a dense (distance × class) matrix of IVLs
// at one target probability. Samples that would make linear interpolation
// degenerate (duplicate adjacent probabilities or intensities) are masked out
// per pair before interpolating; values outside the sampled probability range
// are obtained by extending the nearest boundary segment. Resolved values are
// floored at a small positive epsilon so downstream consumers never divide by
// zero or take the log of a non-positive intensity.
//
// # ID Generation
//
// Resolved-matrix IDs are deterministic SHA-256 hashes of
// calc_id|alarm_level|threshold. Reprocessing the same calculation yields the
// same ID, which keeps downstream upserts idempotent under replay. See
// [generateID].
package domain
