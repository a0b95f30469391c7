package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-risk-service/internal/config"
	"github.com/couchcryptid/quake-risk-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// AssetRisk is the message published for each classified asset.
type AssetRisk struct {
	ReportID    string          `json:"report_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Asset       domain.Asset    `json:"asset"`
	Risk        domain.RiskTier `json:"risk"`
	LocationKey string          `json:"location_key"`
}

// Writer produces risk assessments to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchFlushInterval,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one message per classified asset in the report in a single
// WriteMessages call. Messages are keyed by building name so successive
// assessments of the same asset land on the same partition.
func (w *Writer) Publish(ctx context.Context, report domain.Report) error {
	if len(report.Assets) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(report.Assets))
	for i := range report.Assets {
		msg, err := serializeToMessage(report, report.Assets[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish report %s: %w", report.ID, err)
	}
	w.logger.Debug("report published", "report_id", report.ID, "messages", len(msgs))
	return nil
}

// Close flushes pending messages and closes the underlying writer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one classified asset into a Kafka message.
func serializeToMessage(report domain.Report, ca domain.ClassifiedAsset) (kafkago.Message, error) {
	data, err := json.Marshal(AssetRisk{
		ReportID:    report.ID,
		GeneratedAt: report.GeneratedAt,
		Asset:       ca.Asset,
		Risk:        ca.Risk,
		LocationKey: domain.LocationKey(ca.Asset.Location),
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize asset risk: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ca.Asset.BuildingName),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk", Value: []byte(ca.Risk.String())},
			{Key: "report_id", Value: []byte(report.ID)},
			{Key: "generated_at", Value: []byte(report.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
