package usecase

import (
	"context"
	"testing"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/repository"
)

func TestKafkaHandlerSingleObject(t *testing.T) {
	store := repository.NewMemoryPostStore()
	in := newTestIngestor(t, store, &fakeClassifier{}, nil)
	h := NewKafkaItemsHandler("raw-items", in, testLogger(t))

	if h.Topic() != "raw-items" {
		t.Fatalf("topic %q", h.Topic())
	}

	payload := []byte(`{"source_id":"k1","title":"$AAPL to the moon","created_at":"2026-01-10T12:00:00Z","channel":"stocks"}`)
	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("handle: %v", err)
	}

	n, _ := store.Count(context.Background(), models.Filter{Ticker: "AAPL"})
	if n != 1 {
		t.Fatalf("stored %d", n)
	}
}

func TestKafkaHandlerArrayPayload(t *testing.T) {
	store := repository.NewMemoryPostStore()
	in := newTestIngestor(t, store, &fakeClassifier{}, nil)
	h := NewKafkaItemsHandler("raw-items", in, testLogger(t))

	payload := []byte(` [
		{"source_id":"k2","title":"one","created_at":"2026-01-10T12:00:00Z"},
		{"source_id":"k3","title":"two","created_at":"2026-01-10T13:00:00Z"}
	]`)
	if err := h.Handle(context.Background(), payload); err != nil {
		t.Fatalf("handle: %v", err)
	}

	n, _ := store.Count(context.Background(), models.Filter{})
	if n != 2 {
		t.Fatalf("stored %d", n)
	}
}

func TestKafkaHandlerMalformedPayload(t *testing.T) {
	store := repository.NewMemoryPostStore()
	in := newTestIngestor(t, store, &fakeClassifier{}, nil)
	h := NewKafkaItemsHandler("raw-items", in, testLogger(t))

	if err := h.Handle(context.Background(), []byte(`{broken`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestKafkaHandlerRedelivery(t *testing.T) {
	store := repository.NewMemoryPostStore()
	in := newTestIngestor(t, store, &fakeClassifier{}, nil)
	h := NewKafkaItemsHandler("raw-items", in, testLogger(t))

	payload := []byte(`{"source_id":"k4","title":"same message","created_at":"2026-01-10T12:00:00Z"}`)
	for i := 0; i < 3; i++ {
		if err := h.Handle(context.Background(), payload); err != nil {
			t.Fatalf("handle %d: %v", i, err)
		}
	}

	n, _ := store.Count(context.Background(), models.Filter{})
	if n != 1 {
		t.Fatalf("redelivery must not duplicate, stored %d", n)
	}
}
