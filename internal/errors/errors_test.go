package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"testing"
	"time"
)

func TestNewAndOptions(t *testing.T) {
	ts := time.Unix(0, 0).UTC()
	err := New("EXAMPLE", "example failure",
		WithDetail("detail"),
		WithRequestID("req-123"),
		WithTimestamp(ts),
	)

	if err.Code != "EXAMPLE" || err.Message != "example failure" {
		t.Fatalf("unexpected code or message: %+v", err)
	}
	if err.Detail != "detail" || err.RequestID != "req-123" {
		t.Fatalf("unexpected metadata: %+v", err)
	}
	if !err.Timestamp.Equal(ts) {
		t.Fatalf("unexpected timestamp: %s", err.Timestamp)
	}
	if got := err.Error(); got != "EXAMPLE: example failure (detail)" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeHostnameUnset, "missing")
	wrapped := fmt.Errorf("resolve identity: %w", err)

	if !stderrors.Is(wrapped, ErrHostnameUnset) {
		t.Fatalf("expected wrapped error to match ErrHostnameUnset")
	}
	if stderrors.Is(New(CodeListenFailed, "bind"), ErrHostnameUnset) {
		t.Fatalf("different codes must not match")
	}
}

func TestWithCauseUnwraps(t *testing.T) {
	cause := assertionError("address already in use")
	err := New(CodeListenFailed, "listen failed", WithCause(cause))

	if !stderrors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable through Unwrap")
	}
	if err.Detail != "address already in use" {
		t.Fatalf("expected detail from cause, got %q", err.Detail)
	}
}

func TestFromFindsCodedErrorInChain(t *testing.T) {
	coded := New(CodeConfigInvalid, "bad config")
	got := From(fmt.Errorf("load: %w", coded))
	if got != coded {
		t.Fatalf("expected coded error to be returned as-is, got %+v", got)
	}
	if From(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestMarshalWrapsGenericError(t *testing.T) {
	data, marshalErr := Marshal(assertionError("boom"))
	if marshalErr != nil {
		t.Fatalf("marshal failed: %v", marshalErr)
	}

	var payload Error
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("json failed: %v", err)
	}

	if payload.Code != CodeInternal {
		t.Fatalf("expected INTERNAL code, got %s", payload.Code)
	}
	if payload.Detail != "boom" {
		t.Fatalf("expected detail to propagate underlying message")
	}
}

type assertionError string

func (a assertionError) Error() string { return string(a) }

func TestErrorResponseContract(t *testing.T) {
	raw, marshalErr := Marshal(New(CodeHostnameUnset, "HOSTNAME environment variable is not set",
		WithRequestID("req-123"),
	))
	if marshalErr != nil {
		t.Fatalf("marshal failed: %v", marshalErr)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, field := range []string{"error", "code", "request_id", "timestamp"} {
		if _, ok := payload[field].(string); !ok {
			t.Fatalf("expected string field %q in payload %s", field, raw)
		}
	}
	if _, ok := payload["detail"]; ok {
		t.Fatalf("expected empty detail to be omitted")
	}
	if _, err := time.Parse(time.RFC3339, payload["timestamp"].(string)); err != nil {
		t.Fatalf("timestamp not RFC3339: %v", err)
	}
}
