package backoff

import (
	"testing"
	"time"
)

func TestPolicy_Delay(t *testing.T) {
	p := Policy{BaseDelay: 2 * time.Second, MaxAttempts: 5}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 6 * time.Second},
		{5, 10 * time.Second},
		{0, 2 * time.Second},  // clamped to attempt 1
		{-3, 2 * time.Second}, // clamped to attempt 1
	}

	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestPolicy_Exhausted(t *testing.T) {
	p := Default()

	for failures := 1; failures < p.MaxAttempts; failures++ {
		if p.Exhausted(failures) {
			t.Errorf("Exhausted(%d) = true, want false", failures)
		}
	}

	// The 5th consecutive failure is the last: no further attempts.
	if !p.Exhausted(p.MaxAttempts) {
		t.Errorf("Exhausted(%d) = false, want true", p.MaxAttempts)
	}
	if !p.Exhausted(p.MaxAttempts + 1) {
		t.Errorf("Exhausted(%d) = false, want true", p.MaxAttempts+1)
	}
}

func TestDefault(t *testing.T) {
	p := Default()

	if p.BaseDelay != time.Second {
		t.Errorf("BaseDelay = %v, want 1s", p.BaseDelay)
	}
	if p.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", p.MaxAttempts)
	}
}
