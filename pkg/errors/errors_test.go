package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	meta := MetadataFor(CodeGatewayUnavailable)
	if meta.HTTPStatus != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for gateway unavailable, got %d", meta.HTTPStatus)
	}
	if !meta.Retryable {
		t.Fatalf("gateway unavailable must be retryable")
	}

	meta = MetadataFor(CodeNotFound)
	if meta.HTTPStatus != http.StatusNotFound || meta.Retryable {
		t.Fatalf("not found must be a permanent 404, got %+v", meta)
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown codes should map to internal, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("socket timeout")
	err := Wrap(CodeGatewayUnavailable, cause, "verify session")

	if !stdErrors.Is(err, cause) {
		t.Fatalf("wrapped error should match the cause")
	}
	if err.Code() != CodeGatewayUnavailable {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsUnwrapsThroughFmtErrors(t *testing.T) {
	inner := New(CodeStateConflict, "order already paid")
	wrapped := fmt.Errorf("reconcile: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatalf("expected typed error")
	}
	if typed.Code() != CodeStateConflict {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(New(CodeGatewayUnavailable, "gateway down")) {
		t.Fatalf("gateway unavailable should be retryable")
	}
	if IsRetryable(New(CodeValidation, "bad input")) {
		t.Fatalf("validation errors are permanent")
	}
	if IsRetryable(stdErrors.New("untyped")) {
		t.Fatalf("untyped errors are not classified retryable")
	}
}
