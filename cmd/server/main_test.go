package main

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/creditledger/internal/infrastructure/config"
	"github.com/iho/creditledger/internal/infrastructure/eventpublisher"
)

func TestNewPublisherFallsBackToLog(t *testing.T) {
	cfg := &config.Config{KafkaTopic: "creditledger.events"}

	publisher, closeFn := newPublisher(cfg, zerolog.Nop())
	defer closeFn()

	if _, ok := publisher.(*eventpublisher.LogPublisher); !ok {
		t.Fatalf("expected log publisher, got %T", publisher)
	}
}

func TestNewPublisherUsesKafkaWhenBrokersSet(t *testing.T) {
	cfg := &config.Config{
		KafkaBrokers: []string{"localhost:9092"},
		KafkaTopic:   "creditledger.events",
	}

	publisher, closeFn := newPublisher(cfg, zerolog.Nop())
	defer closeFn()

	if _, ok := publisher.(*eventpublisher.KafkaPublisher); !ok {
		t.Fatalf("expected kafka publisher, got %T", publisher)
	}
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{
		HTTPPort:         "9090",
		HTTPReadTimeout:  5 * time.Second,
		HTTPWriteTimeout: 6 * time.Second,
		HTTPIdleTimeout:  7 * time.Second,
	}

	srv := newHTTPServer(cfg, nil)
	if srv.Addr != ":9090" {
		t.Fatalf("expected addr :9090, got %s", srv.Addr)
	}
	if srv.ReadTimeout != 5*time.Second || srv.WriteTimeout != 6*time.Second || srv.IdleTimeout != 7*time.Second {
		t.Fatalf("timeouts not applied: %+v", srv)
	}
}

func TestLedgerOptions(t *testing.T) {
	cfg := &config.Config{
		DefaultCurrency:      "EUR",
		CreditPayeeOnCapture: false,
		LedgerTxTimeout:      time.Second,
	}

	if got := len(ledgerOptions(cfg, nil, zerolog.Nop())); got != 5 {
		t.Fatalf("expected 5 options, got %d", got)
	}
}
