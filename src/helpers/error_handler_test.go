package helpers

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestErrorTaxonomy(t *testing.T) {
	rl := NewRateLimitError("AAPL", errors.New("429"))
	if !IsRateLimit(rl) {
		t.Fatal("rate limit error not recognized")
	}
	if IsSymbolNotFound(rl) {
		t.Fatal("rate limit misread as symbol-not-found")
	}

	nf := NewSymbolNotFoundError("NOPE")
	if !IsSymbolNotFound(nf) {
		t.Fatal("symbol-not-found error not recognized")
	}
	if IsRateLimit(nf) {
		t.Fatal("symbol-not-found misread as rate limit")
	}

	up := NewUpstreamError("AAPL", errors.New("boom"))
	if IsRateLimit(up) || IsSymbolNotFound(up) {
		t.Fatal("upstream error misclassified")
	}
}

func TestErrorTaxonomySurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("scan failed: %w", NewRateLimitError("AAPL", nil))
	if !IsRateLimit(wrapped) {
		t.Fatal("classification must survive fmt.Errorf wrapping")
	}

	doubly := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", NewSymbolNotFoundError("X")))
	if !IsSymbolNotFound(doubly) {
		t.Fatal("classification must survive nested wrapping")
	}
}

func TestErrorHandlerCounts(t *testing.T) {
	h := NewErrorHandler("ERROR")

	h.Handle(nil, "no-op")
	if h.Count() != 0 {
		t.Fatalf("nil error must not count, got %d", h.Count())
	}

	h.Handle(errors.New("boom"), "scan")
	h.Handle(NewUpstreamError("AAPL", nil), "scan")
	if h.Count() != 2 {
		t.Fatalf("expected 2 recorded errors, got %d", h.Count())
	}

	h.ResetErrorCount()
	if h.Count() != 0 {
		t.Fatalf("reset should zero the count, got %d", h.Count())
	}
}

func TestRetryWithBackoffStopsOnTerminalErrors(t *testing.T) {
	attempts := 0
	_, err := RetryWithBackoff("test", 5, time.Millisecond, func() (interface{}, error) {
		attempts++
		return nil, NewSymbolNotFoundError("NOPE")
	})
	if attempts != 1 {
		t.Fatalf("symbol-not-found must not retry, got %d attempts", attempts)
	}
	if !IsSymbolNotFound(err) {
		t.Fatalf("terminal error should surface unchanged: %v", err)
	}

	attempts = 0
	_, err = RetryWithBackoff("test", 5, time.Millisecond, func() (interface{}, error) {
		attempts++
		return nil, NewRateLimitError("AAPL", nil)
	})
	if attempts != 1 {
		t.Fatalf("rate limit must not retry, got %d attempts", attempts)
	}
	if !IsRateLimit(err) {
		t.Fatalf("rate limit should surface unchanged: %v", err)
	}
}

func TestRetryWithBackoffRetriesTransientErrors(t *testing.T) {
	attempts := 0
	res, err := RetryWithBackoff("test", 3, time.Millisecond, func() (interface{}, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil || res != "ok" {
		t.Fatalf("expected eventual success, got %v %v", res, err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithBackoffExhausts(t *testing.T) {
	attempts := 0
	_, err := RetryWithBackoff("test", 3, time.Millisecond, func() (interface{}, error) {
		attempts++
		return nil, errors.New("always fails")
	})
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if err == nil {
		t.Fatal("exhausted retries should return the last error")
	}
}
