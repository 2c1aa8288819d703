package cache

import (
	"context"
	"errors"
	"time"
)

// ErrInFlight is returned by Begin when another request holding the
// same idempotency key has started but not yet stored its response.
var ErrInFlight = errors.New("request with this idempotency key is in flight")

// StoredResponse is the recorded outcome of a completed request,
// replayed verbatim when the same idempotency key is presented again.
type StoredResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore guards mutating endpoints against client retries.
// Begin claims a key atomically; exactly one caller wins and executes
// the operation, then records the outcome with Complete. Concurrent
// and subsequent callers either replay the stored response or are told
// the original request is still running.
type IdempotencyStore interface {
	// Begin claims the key. It returns (nil, nil) when the caller won
	// the claim and should execute the request, (resp, nil) when a
	// completed response exists to replay, and ErrInFlight when the
	// key is claimed but not yet completed.
	Begin(ctx context.Context, key string, ttl time.Duration) (*StoredResponse, error)

	// Complete stores the response for a claimed key
	Complete(ctx context.Context, key string, resp *StoredResponse, ttl time.Duration) error

	// Release frees a claimed key without storing a response, used
	// when the guarded operation failed and should be retryable
	Release(ctx context.Context, key string) error

	Close() error
}
