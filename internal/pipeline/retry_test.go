package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/extract"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("bad request"), false},
		{"retryable", &extract.RetryableError{StatusCode: 503}, true},
		{"wrapped", fmt.Errorf("extract: %w", &extract.RetryableError{StatusCode: 429}), true},
		{"deadline", context.DeadlineExceeded, false},
		{"disabled", extract.ErrDisabled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt := range 10 {
		base := time.Duration(1<<uint(attempt)) * time.Second
		if attempt > 5 || base > maxBackoff {
			base = maxBackoff
		}
		for range 20 {
			d := Backoff(attempt)
			if d < base || d >= base+base/2 {
				t.Fatalf("attempt %d: expected backoff in [%v, %v), got %v", attempt, base, base+base/2, d)
			}
		}
	}
}
