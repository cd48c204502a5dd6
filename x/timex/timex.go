package timex

import "time"

// TicksFor converts a duration to countdown-timer ticks for a core
// clock. clockHz==0 is coerced to 1 to avoid division by zero.
func TicksFor(d time.Duration, clockHz uint32) uint32 {
	if clockHz == 0 {
		clockHz = 1
	}
	if d < 0 {
		d = 0
	}
	return uint32(uint64(d) * uint64(clockHz) / uint64(time.Second))
}

// DurationForTicks is the inverse of TicksFor.
func DurationForTicks(ticks, clockHz uint32) time.Duration {
	if clockHz == 0 {
		clockHz = 1
	}
	return time.Duration(uint64(ticks) * uint64(time.Second) / uint64(clockHz))
}

// BitPeriod returns the nominal bit time for a baud rate. baud==0 is
// coerced to 1.
func BitPeriod(baud uint32) time.Duration {
	if baud == 0 {
		baud = 1
	}
	return time.Second / time.Duration(baud)
}
