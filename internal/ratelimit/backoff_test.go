package ratelimit

import (
	"testing"
	"time"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	if p.Min != time.Second {
		t.Errorf("Min = %v, want 1s", p.Min)
	}
	if p.Max != 60*time.Second {
		t.Errorf("Max = %v, want 60s", p.Max)
	}
	if !p.Jitter {
		t.Error("Jitter = false, want true")
	}
}

func TestPolicy_Delay(t *testing.T) {
	p := Policy{Min: time.Second, Max: 60 * time.Second, Jitter: false}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 32 * time.Second},
		{6, 60 * time.Second}, // 64s capped
		{7, 60 * time.Second},
		{-1, time.Second}, // treated as 0
	}

	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestPolicy_Delay_Monotonic(t *testing.T) {
	p := Policy{Min: 250 * time.Millisecond, Max: 30 * time.Second, Jitter: false}

	for n := 0; n < 12; n++ {
		if p.Delay(n) > p.Delay(n+1) {
			t.Errorf("Delay(%d) = %v exceeds Delay(%d) = %v", n, p.Delay(n), n+1, p.Delay(n+1))
		}
	}
}

func TestPolicy_Delay_JitterBounds(t *testing.T) {
	base := Policy{Min: time.Second, Max: 60 * time.Second, Jitter: false}
	jittered := Policy{Min: time.Second, Max: 60 * time.Second, Jitter: true}

	for attempt := 0; attempt < 4; attempt++ {
		deterministic := base.Delay(attempt)
		lo := deterministic / 2
		hi := deterministic + deterministic/2

		for i := 0; i < 200; i++ {
			d := jittered.Delay(attempt)
			if d < lo || d >= hi {
				t.Fatalf("Delay(%d) = %v, want in [%v, %v)", attempt, d, lo, hi)
			}
		}
	}
}
