package retry

import (
	"testing"
	"time"
)

func TestExponentialBackoff_DefaultValues(t *testing.T) {
	strategy := NewExponentialBackoff(3)

	if strategy.InitialDelay() != 100*time.Millisecond {
		t.Errorf("Expected InitialDelay=100ms, got %v", strategy.InitialDelay())
	}
	if strategy.MaxDelay() != 30*time.Second {
		t.Errorf("Expected MaxDelay=30s, got %v", strategy.MaxDelay())
	}
	if strategy.Multiplier() != 2.0 {
		t.Errorf("Expected Multiplier=2.0, got %v", strategy.Multiplier())
	}
	if strategy.MaxAttempts() != 3 {
		t.Errorf("Expected MaxAttempts=3, got %v", strategy.MaxAttempts())
	}
}

func TestExponentialBackoff_NextDelay_ExactSchedule(t *testing.T) {
	strategy := NewExponentialBackoff(5,
		WithInitialDelay(100*time.Millisecond),
		WithMultiplier(2.0),
	)

	tests := []struct {
		attempt       int
		expectedDelay time.Duration
	}{
		{attempt: 0, expectedDelay: 100 * time.Millisecond},  // 100 * 2^0
		{attempt: 1, expectedDelay: 200 * time.Millisecond},  // 100 * 2^1
		{attempt: 2, expectedDelay: 400 * time.Millisecond},  // 100 * 2^2
		{attempt: 3, expectedDelay: 800 * time.Millisecond},  // 100 * 2^3
		{attempt: 4, expectedDelay: 1600 * time.Millisecond}, // 100 * 2^4
	}

	for _, tt := range tests {
		delay := strategy.NextDelay(tt.attempt)
		if delay != tt.expectedDelay {
			t.Errorf("NextDelay(%d) = %v, want %v", tt.attempt, delay, tt.expectedDelay)
		}
	}
}

func TestExponentialBackoff_NextDelay_MaxDelayCap(t *testing.T) {
	strategy := NewExponentialBackoff(10,
		WithInitialDelay(100*time.Millisecond),
		WithMultiplier(2.0),
		WithMaxDelay(1*time.Second),
	)

	// 100 * 2^5 = 3200ms, capped at 1s
	if delay := strategy.NextDelay(5); delay != 1*time.Second {
		t.Errorf("NextDelay(5) = %v, want cap at 1s", delay)
	}
	// Far beyond the cap stays at the cap
	if delay := strategy.NextDelay(20); delay != 1*time.Second {
		t.Errorf("NextDelay(20) = %v, want cap at 1s", delay)
	}
}

func TestExponentialBackoff_NextDelay_WithJitter(t *testing.T) {
	strategy := NewExponentialBackoff(5,
		WithInitialDelay(100*time.Millisecond),
		WithMultiplier(2.0),
		WithJitter(0.1),
		WithJitterFunc(func() float64 { return 1.0 }), // Maximum positive offset
	)

	// offset = (1.0 - 0.5) * 2 = 1.0; delay = 100ms * (1 + 0.1*1.0) = 110ms
	if delay := strategy.NextDelay(0); delay != 110*time.Millisecond {
		t.Errorf("NextDelay(0) = %v, want 110ms with max positive jitter", delay)
	}

	strategy = NewExponentialBackoff(5,
		WithInitialDelay(100*time.Millisecond),
		WithMultiplier(2.0),
		WithJitter(0.1),
		WithJitterFunc(func() float64 { return 0.0 }), // Maximum negative offset
	)

	// offset = (0.0 - 0.5) * 2 = -1.0; delay = 100ms * (1 - 0.1) = 90ms
	if delay := strategy.NextDelay(0); delay != 90*time.Millisecond {
		t.Errorf("NextDelay(0) = %v, want 90ms with max negative jitter", delay)
	}
}

func TestExponentialBackoff_SubMillisecondInitialDelay(t *testing.T) {
	strategy := NewExponentialBackoff(3,
		WithInitialDelay(500*time.Microsecond),
		WithMultiplier(2.0),
	)

	if delay := strategy.NextDelay(0); delay != 500*time.Microsecond {
		t.Errorf("NextDelay(0) = %v, want 500µs", delay)
	}
	if delay := strategy.NextDelay(1); delay != 1*time.Millisecond {
		t.Errorf("NextDelay(1) = %v, want 1ms", delay)
	}
}
