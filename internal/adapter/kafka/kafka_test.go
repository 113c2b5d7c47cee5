package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/domain"
)

func TestMapMessageToRawCurve(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("calc-77"),
		Value:     []byte(`{"calc_id":"calc-77"}`),
		Topic:     "hazard-curve-sets",
		Partition: 3,
		Offset:    128,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "imt", Value: []byte("PGA")},
		},
	}

	raw := mapMessageToRawCurve(msg)

	assert.Equal(t, []byte("calc-77"), raw.Key)
	assert.JSONEq(t, `{"calc_id":"calc-77"}`, string(raw.Value))
	assert.Equal(t, "hazard-curve-sets", raw.Topic)
	assert.Equal(t, 3, raw.Partition)
	assert.Equal(t, int64(128), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "PGA", raw.Headers["imt"])
	assert.Nil(t, raw.Commit)
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 8, 30, 11, 45, 0, 0, time.UTC)
	doc := domain.ResolvedThresholds{
		ID:         "red-abc123",
		CalcID:     "calc-77",
		AlarmLevel: "red",
		Threshold:  0.01,
		IVLs:       [][]float64{{2.5, 3.1}},
		ResolvedAt: now,
	}

	msg, err := serializeToMessage(doc)
	require.NoError(t, err)

	assert.Equal(t, []byte("red-abc123"), msg.Key)
	assert.Contains(t, string(msg.Value), `"alarm_level":"red"`)
	assert.Contains(t, string(msg.Value), `"calc_id":"calc-77"`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "alarm_level", msg.Headers[0].Key)
	assert.Equal(t, []byte("red"), msg.Headers[0].Value)
	assert.Equal(t, "threshold", msg.Headers[1].Key)
	assert.Equal(t, []byte("0.01"), msg.Headers[1].Value)
	assert.Equal(t, "resolved_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}
