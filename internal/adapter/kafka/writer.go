package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/config"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/domain"
)

// Writer produces resolved-threshold documents to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes resolved matrices to the sink topic in a
// single WriteMessages call for efficiency.
func (w *Writer) LoadBatch(ctx context.Context, docs []domain.ResolvedThresholds) error {
	if len(docs) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(docs))
	for i := range docs {
		msg, err := serializeToMessage(docs[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ResolvedThresholds document into a Kafka
// message. The key is the deterministic document ID so replays land on the
// same partition and compact cleanly.
func serializeToMessage(doc domain.ResolvedThresholds) (kafkago.Message, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize resolved thresholds: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(doc.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alarm_level", Value: []byte(doc.AlarmLevel)},
			{Key: "threshold", Value: []byte(strconv.FormatFloat(doc.Threshold, 'g', -1, 64))},
			{Key: "resolved_at", Value: []byte(doc.ResolvedAt.Format(time.RFC3339))},
		},
	}, nil
}
