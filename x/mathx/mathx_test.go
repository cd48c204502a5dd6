package mathx

import (
	"testing"
	"time"
)

func TestClamp(t *testing.T) {
	if got := Clamp(5, 1, 10); got != 5 {
		t.Errorf("Clamp(5,1,10) = %d", got)
	}
	if got := Clamp(-3, 1, 10); got != 1 {
		t.Errorf("Clamp(-3,1,10) = %d", got)
	}
	if got := Clamp(42, 1, 10); got != 10 {
		t.Errorf("Clamp(42,1,10) = %d", got)
	}
	// Swapped bounds.
	if got := Clamp(0, 10, 1); got != 1 {
		t.Errorf("Clamp(0,10,1) = %d", got)
	}
	// Durations, as the line driver clamps its echo window.
	if got := Clamp(2*time.Second, time.Millisecond, time.Second); got != time.Second {
		t.Errorf("Clamp(2s,1ms,1s) = %v", got)
	}
}
