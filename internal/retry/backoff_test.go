package retry

import (
	"testing"
	"time"
)

func TestExponentialBackoff_DefaultValues(t *testing.T) {
	strategy := NewExponentialBackoff(2)

	if strategy.InitialDelay() != 200*time.Millisecond {
		t.Errorf("Expected InitialDelay=200ms, got %v", strategy.InitialDelay())
	}
	if strategy.MaxDelay() != 5*time.Second {
		t.Errorf("Expected MaxDelay=5s, got %v", strategy.MaxDelay())
	}
	if strategy.Multiplier() != 2.0 {
		t.Errorf("Expected Multiplier=2.0, got %v", strategy.Multiplier())
	}
	if strategy.Jitter() != 0.1 {
		t.Errorf("Expected Jitter=0.1, got %v", strategy.Jitter())
	}
	if strategy.MaxAttempts() != 2 {
		t.Errorf("Expected MaxAttempts=2, got %v", strategy.MaxAttempts())
	}
}

func TestExponentialBackoff_NextDelay_WithoutJitter(t *testing.T) {
	strategy := NewExponentialBackoff(5,
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(time.Minute),
		WithJitter(0),
	)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, 1600 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := strategy.NextDelay(tt.attempt); got != tt.want {
			t.Errorf("NextDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestExponentialBackoff_NextDelay_MaxDelayCap(t *testing.T) {
	strategy := NewExponentialBackoff(100,
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(1*time.Second),
		WithJitter(0),
	)

	for attempt := 4; attempt <= 100; attempt++ {
		if got := strategy.NextDelay(attempt); got != 1*time.Second {
			t.Fatalf("NextDelay(%d) = %v, want cap of 1s", attempt, got)
		}
	}
}

func TestExponentialBackoff_NextDelay_WithJitter(t *testing.T) {
	tests := []struct {
		random float64
		want   time.Duration
	}{
		{0.0, 90 * time.Millisecond},
		{0.5, 100 * time.Millisecond},
		{1.0, 110 * time.Millisecond},
	}

	for _, tt := range tests {
		random := tt.random
		strategy := NewExponentialBackoff(3,
			WithInitialDelay(100*time.Millisecond),
			WithJitter(0.1),
			WithJitterFunc(func() float64 { return random }),
		)
		if got := strategy.NextDelay(0); got != tt.want {
			t.Errorf("jitter random=%v: NextDelay(0) = %v, want %v", tt.random, got, tt.want)
		}
	}
}

func TestExponentialBackoff_CustomMultiplier(t *testing.T) {
	strategy := NewExponentialBackoff(3,
		WithInitialDelay(10*time.Millisecond),
		WithMultiplier(3.0),
		WithJitter(0),
	)

	if got := strategy.NextDelay(2); got != 90*time.Millisecond {
		t.Errorf("NextDelay(2) = %v, want 90ms", got)
	}
}
