package helpers

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"confluence-engine/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type EngineError struct {
	Message string
	Cause   error
}

func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *EngineError) Unwrap() error {
	return e.Cause
}

// RateLimitError signals an explicit provider rate-limit response. Callers
// should back off rather than treat the symbol as permanently unavailable.
type RateLimitError struct{ EngineError }

// SymbolNotFoundError signals that the provider does not recognize the symbol.
type SymbolNotFoundError struct{ EngineError }

// UpstreamError covers any other failed or empty upstream fetch.
type UpstreamError struct{ EngineError }

// BadDataError marks computed values outside plausible bounds. The producing
// component discards the value and falls back to a conservative default.
type BadDataError struct{ EngineError }

// -----------------------------------------------------------------------------

func NewRateLimitError(symbol string, cause error) error {
	return &RateLimitError{EngineError{Message: fmt.Sprintf("rate limited fetching %s", symbol), Cause: cause}}
}

func NewSymbolNotFoundError(symbol string) error {
	return &SymbolNotFoundError{EngineError{Message: fmt.Sprintf("symbol %s not recognized", symbol)}}
}

func NewUpstreamError(symbol string, cause error) error {
	return &UpstreamError{EngineError{Message: fmt.Sprintf("upstream data unavailable for %s", symbol), Cause: cause}}
}

// -----------------------------------------------------------------------------

func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

func IsSymbolNotFound(err error) bool {
	var nf *SymbolNotFoundError
	return errors.As(err, &nf)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts the operation up to maxRetries times with
// exponential backoff. Rate-limit and symbol-not-found errors are never
// retried: the former needs a longer back-off than we are willing to block
// for, the latter is permanent.
func RetryWithBackoff(operation string, maxRetries int, baseDelay time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if IsRateLimit(err) || IsSymbolNotFound(err) {
			break
		}
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		fmt.Printf("Warning: Attempt %d/%d failed for %s: %v. Retrying in %v\n", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return nil, lastErr
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

// ErrorHandler logs and counts failures across concurrent scans. The count
// feeds the metrics endpoint.
type ErrorHandler struct {
	Logger     *logger.Logger
	errorCount atomic.Int64
}

func NewErrorHandler(logLevel string) *ErrorHandler {
	return &ErrorHandler{
		Logger: logger.NewLogger(logLevel, "ErrorHandler"),
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.errorCount.Store(0)
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Count() int64 {
	return e.errorCount.Load()
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Handle(err error, context string) {
	if err != nil {
		e.errorCount.Add(1)
		e.Logger.Error("Error in %s: %v", context, err)
	}
}
