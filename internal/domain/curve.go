package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// RawCurveMessage represents an unprocessed message from the source topic.
type RawCurveMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// CurveSet holds a family of hazard curves sharing one exceedance-probability
// axis. IVLs is indexed [sample][distance][class]; Probs gives the exceedance
// probability of each sample and must match the tensor's first dimension.
type CurveSet struct {
	CalcID            string        `json:"calc_id,omitempty"`
	IMT               string        `json:"imt,omitempty"`
	InvestigationTime float64       `json:"investigation_time,omitempty"`
	Probs             []float64     `json:"probs"`
	IVLs              [][][]float64 `json:"ivls"`

	// Optional axis labels carried through to resolved output.
	DistanceBins         []float64 `json:"distance_bins,omitempty"`
	VulnerabilityClasses []string  `json:"vulnerability_classes,omitempty"`
}

// ParseRawCurveSet deserializes a RawCurveMessage's value into a CurveSet.
// The shape of the tensor is validated; a reference document (calc_id only,
// no curves) passes validation so the caller can fetch the curves by ID.
func ParseRawCurveSet(raw RawCurveMessage) (CurveSet, error) {
	var cs CurveSet
	if err := json.Unmarshal(raw.Value, &cs); err != nil {
		return CurveSet{}, fmt.Errorf("parse curve set: %w", err)
	}
	if cs.IsReference() {
		if cs.CalcID == "" {
			return CurveSet{}, fmt.Errorf("parse curve set: document carries neither curves nor a calc_id")
		}
		return cs, nil
	}
	if _, _, err := cs.Dims(); err != nil {
		return CurveSet{}, err
	}
	return cs, nil
}

// IsReference reports whether the document carries no curve data and must be
// resolved against the engine API via its CalcID.
func (cs CurveSet) IsReference() bool {
	return len(cs.IVLs) == 0 && len(cs.Probs) == 0
}

// Dims validates the tensor shape and returns (distance count, class count).
// The probability axis must match the sample dimension, and every sample
// slice must be rectangular with the same (distance, class) extent.
func (cs CurveSet) Dims() (distances, classes int, err error) {
	samples := len(cs.IVLs)
	if len(cs.Probs) != samples {
		return 0, 0, &DimensionError{Axis: "probs", Want: samples, Got: len(cs.Probs)}
	}
	if samples == 0 {
		return 0, 0, &DimensionError{Axis: "ivls", Want: 1, Got: 0}
	}

	distances = len(cs.IVLs[0])
	if distances > 0 {
		classes = len(cs.IVLs[0][0])
	}
	for s := range cs.IVLs {
		if len(cs.IVLs[s]) != distances {
			return 0, 0, &DimensionError{Axis: "ivls", Want: distances, Got: len(cs.IVLs[s])}
		}
		for d := range cs.IVLs[s] {
			if len(cs.IVLs[s][d]) != classes {
				return 0, 0, &DimensionError{Axis: "ivls", Want: classes, Got: len(cs.IVLs[s][d])}
			}
		}
	}

	if len(cs.DistanceBins) != 0 && len(cs.DistanceBins) != distances {
		return 0, 0, &DimensionError{Axis: "distance_bins", Want: distances, Got: len(cs.DistanceBins)}
	}
	if len(cs.VulnerabilityClasses) != 0 && len(cs.VulnerabilityClasses) != classes {
		return 0, 0, &DimensionError{Axis: "vulnerability_classes", Want: classes, Got: len(cs.VulnerabilityClasses)}
	}
	return distances, classes, nil
}

// Curve returns the per-sample intensity values for one (distance, class)
// pair. The returned slice is freshly allocated; mutating it does not touch
// the tensor.
func (cs CurveSet) Curve(distance, class int) []float64 {
	curve := make([]float64, len(cs.IVLs))
	for s := range cs.IVLs {
		curve[s] = cs.IVLs[s][distance][class]
	}
	return curve
}

// CurveFetcher retrieves a full curve set from the hazard engine by
// calculation ID.
type CurveFetcher interface {
	FetchCurveSet(ctx context.Context, calcID string) (CurveSet, error)
}

// ResultMatrix is a dense (distance × vulnerability class) matrix of resolved
// intensity values. Values are stored row-major: Vals[d*Classes+v].
type ResultMatrix struct {
	Distances int
	Classes   int
	Vals      []float64
}

// NewResultMatrix allocates a zeroed (distances × classes) matrix.
func NewResultMatrix(distances, classes int) ResultMatrix {
	return ResultMatrix{
		Distances: distances,
		Classes:   classes,
		Vals:      make([]float64, distances*classes),
	}
}

// At returns the resolved value for (distance, class).
func (m ResultMatrix) At(distance, class int) float64 {
	return m.Vals[distance*m.Classes+class]
}

func (m ResultMatrix) set(distance, class int, v float64) {
	m.Vals[distance*m.Classes+class] = v
}

// Rows returns the matrix as nested [distance][class] slices for
// serialization.
func (m ResultMatrix) Rows() [][]float64 {
	rows := make([][]float64, m.Distances)
	for d := 0; d < m.Distances; d++ {
		rows[d] = m.Vals[d*m.Classes : (d+1)*m.Classes : (d+1)*m.Classes]
	}
	return rows
}

// ResolvedThresholds is one resolved matrix destined for the sink topic:
// the IVL per (distance, class) pair at a single alarm level's target
// exceedance probability.
type ResolvedThresholds struct {
	ID                   string      `json:"id"`
	CalcID               string      `json:"calc_id,omitempty"`
	AlarmLevel           string      `json:"alarm_level"`
	Threshold            float64     `json:"threshold"`
	IMT                  string      `json:"imt,omitempty"`
	DistanceBins         []float64   `json:"distance_bins,omitempty"`
	VulnerabilityClasses []string    `json:"vulnerability_classes,omitempty"`
	IVLs                 [][]float64 `json:"ivls"`
	ResolvedAt           time.Time   `json:"resolved_at"`
}

// NewResolvedThresholds assembles the output document for one alarm level,
// stamping it with a deterministic ID and the current clock time.
func NewResolvedThresholds(cs CurveSet, level string, threshold float64, m ResultMatrix) ResolvedThresholds {
	return ResolvedThresholds{
		ID:                   generateID(cs.CalcID, level, threshold),
		CalcID:               cs.CalcID,
		AlarmLevel:           level,
		Threshold:            threshold,
		IMT:                  cs.IMT,
		DistanceBins:         cs.DistanceBins,
		VulnerabilityClasses: cs.VulnerabilityClasses,
		IVLs:                 m.Rows(),
		ResolvedAt:           clock.Now().UTC(),
	}
}

// generateID produces a deterministic ID from the calculation ID, alarm level,
// and threshold. Deterministic IDs keep downstream upserts idempotent when a
// calculation is replayed through the pipeline.
func generateID(calcID, level string, threshold float64) string {
	input := fmt.Sprintf("%s|%s|%g", calcID, level, threshold)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if level == "" {
		return short
	}
	return level + "-" + short
}
