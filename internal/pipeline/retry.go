package pipeline

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/docoutline/internal/extract"
)

const (
	// MaxRetries bounds the calls made to the external service per job.
	MaxRetries = 3
	maxBackoff = 30 * time.Second
)

// IsRetryable reports whether err is a transient failure of the external
// service. Per-call timeouts are not retried: the job degrades to the local
// tree instead.
func IsRetryable(err error) bool {
	var retryErr *extract.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with up to 50% jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if attempt > 5 || base > maxBackoff {
		base = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}
