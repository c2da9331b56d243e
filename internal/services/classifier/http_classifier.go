package classifier

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	domsvc "StockPulse/internal/domain/service"
	xhttp "StockPulse/pkg/http"
)

// Config tunes the HTTP classifier adapter.
type Config struct {
	ServiceURL          string
	Timeout             time.Duration
	MaxInputChars       int
	ConfidenceThreshold float64
	RetryAttempts       int
}

// HTTPClassifier adapts an external FinBERT-style model service to the
// domain Classifier interface. The adapter owns input truncation and the
// low-confidence policy; the model service only sees bounded text and only
// returns raw class probabilities.
type HTTPClassifier struct {
	cfg    Config
	client *xhttp.Client
}

// New creates an HTTP classifier adapter.
func New(cfg Config) *HTTPClassifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = 2000
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 1
	}
	return &HTTPClassifier{
		cfg:    cfg,
		client: xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Scores map[string]float64 `json:"scores"`
}

// Classify truncates text deterministically (head truncation at the rune
// boundary), posts it to the model service, and derives the argmax label.
// When the winning probability is below the confidence threshold the result
// keeps its raw label and is flagged low-confidence.
func (c *HTTPClassifier) Classify(ctx context.Context, text string) (models.Classification, error) {
	if strings.TrimSpace(text) == "" {
		// Blank input carries no signal; skip the round-trip.
		return models.Classification{
			Label: models.SentimentNeutral,
			Score: 0.34,
			Scores: map[string]float64{
				models.SentimentPositive: 0.33,
				models.SentimentNegative: 0.33,
				models.SentimentNeutral:  0.34,
			},
		}, nil
	}

	text = Truncate(text, c.cfg.MaxInputChars)

	var resp classifyResponse
	if err := c.postWithRetry(ctx, "/classify", classifyRequest{Text: text}, &resp); err != nil {
		return models.Classification{}, models.NewDependencyError("classifier", err)
	}

	return FromScores(resp.Scores, c.cfg.ConfidenceThreshold)
}

// Ping checks that the model service answers.
func (c *HTTPClassifier) Ping(ctx context.Context) error {
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.cfg.ServiceURL + "/health",
	}, nil)
	if err != nil {
		return models.NewDependencyError("classifier", err)
	}
	return nil
}

func (c *HTTPClassifier) postWithRetry(ctx context.Context, path string, payload, dest interface{}) error {
	var err error
	for i := 1; i <= c.cfg.RetryAttempts; i++ {
		err = c.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:  xhttp.MethodPost,
			URL:     c.cfg.ServiceURL + path,
			Headers: map[string]string{"Content-Type": "application/json"},
			Body:    payload,
		}, dest)
		if err == nil {
			return nil
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("post %s: %w", path, err)
}

// Truncate cuts s to at most max runes, keeping the head.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// FromScores validates raw class probabilities and derives the
// classification. Scores must cover exactly the known labels and sum to 1
// within floating tolerance.
func FromScores(scores map[string]float64, threshold float64) (models.Classification, error) {
	var sum float64
	for _, label := range models.SentimentLabels {
		v, ok := scores[label]
		if !ok {
			return models.Classification{}, models.NewDependencyError("classifier",
				fmt.Errorf("missing score for label %q", label))
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-3 {
		return models.Classification{}, models.NewDependencyError("classifier",
			fmt.Errorf("scores sum to %v, want 1", sum))
	}

	out := models.Classification{
		Label:  models.SentimentNeutral,
		Scores: make(map[string]float64, len(models.SentimentLabels)),
	}
	for _, label := range models.SentimentLabels {
		out.Scores[label] = scores[label]
		if scores[label] > out.Score {
			out.Score = scores[label]
			out.Label = label
		}
	}
	out.LowConfidence = out.Score < threshold
	return out, nil
}

var _ domsvc.Classifier = (*HTTPClassifier)(nil)
