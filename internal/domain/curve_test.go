package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRawCurveSet(t *testing.T) {
	t.Run("full document", func(t *testing.T) {
		data := []byte(`{
			"calc_id": "psha-2026-0142",
			"imt": "MMI",
			"investigation_time": 1.0,
			"probs": [0.9, 0.5],
			"ivls": [[[1, 2]], [[3, 4]]],
			"distance_bins": [5.0],
			"vulnerability_classes": ["A", "B"]
		}`)

		cs, err := ParseRawCurveSet(RawCurveMessage{Value: data})
		require.NoError(t, err)
		assert.Equal(t, "psha-2026-0142", cs.CalcID)
		assert.Equal(t, "MMI", cs.IMT)
		assert.Equal(t, []float64{0.9, 0.5}, cs.Probs)
		assert.False(t, cs.IsReference())

		d, v, err := cs.Dims()
		require.NoError(t, err)
		assert.Equal(t, 1, d)
		assert.Equal(t, 2, v)
	})

	t.Run("reference document", func(t *testing.T) {
		cs, err := ParseRawCurveSet(RawCurveMessage{Value: []byte(`{"calc_id":"psha-9"}`)})
		require.NoError(t, err)
		assert.True(t, cs.IsReference())
		assert.Equal(t, "psha-9", cs.CalcID)
	})

	t.Run("neither curves nor calc_id", func(t *testing.T) {
		_, err := ParseRawCurveSet(RawCurveMessage{Value: []byte(`{}`)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "calc_id")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseRawCurveSet(RawCurveMessage{Value: []byte("{invalid")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse curve set")
	})

	t.Run("probability axis mismatch", func(t *testing.T) {
		data := []byte(`{"probs":[0.9],"ivls":[[[1]],[[2]]]}`)
		_, err := ParseRawCurveSet(RawCurveMessage{Value: data})
		var dimErr *DimensionError
		require.ErrorAs(t, err, &dimErr)
		assert.Equal(t, "probs", dimErr.Axis)
	})

	t.Run("axis labels must match tensor extent", func(t *testing.T) {
		data := []byte(`{"probs":[0.9,0.5],"ivls":[[[1]],[[2]]],"vulnerability_classes":["A","B"]}`)
		_, err := ParseRawCurveSet(RawCurveMessage{Value: data})
		var dimErr *DimensionError
		require.ErrorAs(t, err, &dimErr)
		assert.Equal(t, "vulnerability_classes", dimErr.Axis)
	})
}

func TestCurveSet_Curve(t *testing.T) {
	cs := CurveSet{
		Probs: []float64{0.9, 0.5},
		IVLs: [][][]float64{
			{{1, 2}, {3, 4}},
			{{5, 6}, {7, 8}},
		},
	}

	assert.Equal(t, []float64{2, 6}, cs.Curve(0, 1))
	assert.Equal(t, []float64{3, 7}, cs.Curve(1, 0))

	// The returned slice is a copy.
	c := cs.Curve(0, 0)
	c[0] = 99
	assert.Equal(t, 1.0, cs.IVLs[0][0][0])
}

func TestResultMatrix(t *testing.T) {
	m := NewResultMatrix(2, 3)
	m.set(0, 2, 1.5)
	m.set(1, 0, 2.5)

	assert.Equal(t, 1.5, m.At(0, 2))
	assert.Equal(t, 2.5, m.At(1, 0))
	assert.Equal(t, 0.0, m.At(0, 0))

	rows := m.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []float64{0, 0, 1.5}, rows[0])
	assert.Equal(t, []float64{2.5, 0, 0}, rows[1])
}

func TestNewResolvedThresholds(t *testing.T) {
	frozen := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	cs := CurveSet{
		CalcID:               "psha-2026-0142",
		IMT:                  "MMI",
		Probs:                []float64{0.9, 0.5},
		IVLs:                 [][][]float64{{{1}}, {{2}}},
		DistanceBins:         []float64{5.0},
		VulnerabilityClasses: []string{"A"},
	}
	m := NewResultMatrix(1, 1)
	m.set(0, 0, 4.2)

	out := NewResolvedThresholds(cs, "amber", 0.3, m)

	assert.Equal(t, "amber", out.AlarmLevel)
	assert.Equal(t, 0.3, out.Threshold)
	assert.Equal(t, "psha-2026-0142", out.CalcID)
	assert.Equal(t, [][]float64{{4.2}}, out.IVLs)
	assert.Equal(t, frozen, out.ResolvedAt)
	assert.True(t, len(out.ID) > len("amber-"))
	assert.Contains(t, out.ID, "amber-")

	// Same inputs, same ID; a different level changes it.
	again := NewResolvedThresholds(cs, "amber", 0.3, m)
	assert.Equal(t, out.ID, again.ID)
	other := NewResolvedThresholds(cs, "red", 0.3, m)
	assert.NotEqual(t, out.ID, other.ID)
}
