package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestWithFieldsAccumulateInContext(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf, Level: zerolog.InfoLevel})

	ctx := logg.WithOrderID(context.Background(), "ord-1")
	ctx = logg.WithListingID(ctx, "lst-9")
	logg.Info(ctx, "reconciled")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not json: %v", err)
	}
	if entry["order_id"] != "ord-1" {
		t.Fatalf("expected order_id field, got %v", entry["order_id"])
	}
	if entry["listing_id"] != "lst-9" {
		t.Fatalf("expected listing_id field, got %v", entry["listing_id"])
	}
	if entry["service"] != "test" {
		t.Fatalf("expected service field, got %v", entry["service"])
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if ParseLevel("nonsense") != zerolog.InfoLevel {
		t.Fatalf("unknown levels should fall back to info")
	}
	if ParseLevel("debug") != zerolog.DebugLevel {
		t.Fatalf("debug should parse")
	}
	if ParseLevel(" ") != zerolog.InfoLevel {
		t.Fatalf("blank should fall back to info")
	}
}

func TestErrorLogsWithoutContext(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	logg.Error(nil, "boom", nil)
	if buf.Len() == 0 {
		t.Fatalf("expected output for nil context error logging")
	}
}
