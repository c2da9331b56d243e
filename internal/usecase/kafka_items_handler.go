package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"StockPulse/internal/domain/models"
	applogger "StockPulse/pkg/logger"
)

// KafkaItemsHandler consumes raw feed items from the intake topic and runs
// them through the ingestion pipeline. Each message carries either a single
// RawItem object or an array of them.
type KafkaItemsHandler struct {
	topic    string
	ingestor *Ingestor
	logger   *applogger.Logger
}

// NewKafkaItemsHandler creates a handler bound to topic.
func NewKafkaItemsHandler(topic string, ingestor *Ingestor, logger *applogger.Logger) *KafkaItemsHandler {
	return &KafkaItemsHandler{topic: topic, ingestor: ingestor, logger: logger}
}

// Topic returns the subscribed topic name.
func (h *KafkaItemsHandler) Topic() string { return h.topic }

// Handle decodes the payload and ingests it. Malformed payloads are
// permanent failures; returning the error lets the consumer retry and
// eventually dead-letter them.
func (h *KafkaItemsHandler) Handle(ctx context.Context, data []byte) error {
	items, err := decodeItems(data)
	if err != nil {
		return fmt.Errorf("decode intake payload: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	summary, err := h.ingestor.IngestBatch(ctx, items, models.Filter{})
	if err != nil {
		return err
	}
	h.logger.Debug("kafka intake batch",
		applogger.String("topic", h.topic),
		applogger.Int("ingested", summary.Ingested),
		applogger.Int("skipped", summary.Skipped),
		applogger.Int("filtered", summary.Filtered),
		applogger.Int("failed", summary.Failed),
	)
	return nil
}

func decodeItems(data []byte) ([]models.RawItem, error) {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			var items []models.RawItem
			if err := json.Unmarshal(data, &items); err != nil {
				return nil, err
			}
			return items, nil
		default:
			var item models.RawItem
			if err := json.Unmarshal(data, &item); err != nil {
				return nil, err
			}
			return []models.RawItem{item}, nil
		}
	}
	return nil, nil
}
