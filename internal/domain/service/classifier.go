package service

import (
	"context"

	"StockPulse/internal/domain/models"
)

// Classifier is the narrow capability interface around the external
// text-classification model. Core logic never depends on the concrete
// backend; a mock satisfying this contract is sufficient for tests.
type Classifier interface {
	// Classify returns the sentiment label and per-class probabilities for
	// text. Backend failures surface as a models.DependencyError.
	Classify(ctx context.Context, text string) (models.Classification, error)
	// Ping checks that the backing model service is reachable.
	Ping(ctx context.Context) error
}
