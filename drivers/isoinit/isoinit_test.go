package isoinit

import (
	"testing"
	"time"
)

// recLine records the waveform as (level, hold) segments plus the
// bit-bang hand-over points.
type recLine struct {
	bitbang  []bool
	levels   []bool
	holds    []time.Duration
	pinLevel bool
}

func (r *recLine) SetBitBang(on bool) { r.bitbang = append(r.bitbang, on) }
func (r *recLine) SetBit(level bool) {
	r.levels = append(r.levels, level)
	r.pinLevel = level
}
func (r *recLine) GetBit() bool { return r.pinLevel }

func (r *recLine) delay(d time.Duration) { r.holds = append(r.holds, d) }

func TestSlowWaveform(t *testing.T) {
	r := &recLine{}
	Slow(r, 0x33, Config{Delay: r.delay}) // 0x33: the functional OBD target address

	// Start bit, 8 data bits LSB-first, stop bit.
	want := []bool{false, true, true, false, false, true, true, false, false, true}
	if len(r.levels) != len(want) {
		t.Fatalf("recorded %d level changes, want %d", len(r.levels), len(want))
	}
	for i, lvl := range want {
		if r.levels[i] != lvl {
			t.Errorf("segment %d level = %v, want %v", i, r.levels[i], lvl)
		}
	}
	for i, h := range r.holds {
		if h != 200*time.Millisecond {
			t.Errorf("segment %d held %v, want 200ms", i, h)
		}
	}
	if len(r.holds) != len(want) {
		t.Errorf("recorded %d holds, want %d", len(r.holds), len(want))
	}

	if len(r.bitbang) != 2 || !r.bitbang[0] || r.bitbang[1] {
		t.Errorf("bit-bang hand-over sequence = %v, want [true false]", r.bitbang)
	}
}

func TestSlowTotalDuration(t *testing.T) {
	r := &recLine{}
	Slow(r, 0xB5, Config{Delay: r.delay})

	var total time.Duration
	for _, h := range r.holds {
		total += h
	}
	// 10 bits at 5 baud.
	if total != 2*time.Second {
		t.Errorf("slow init waveform lasts %v, want 2s", total)
	}
}

func TestFastWaveform(t *testing.T) {
	r := &recLine{}
	Fast(r, Config{Delay: r.delay})

	if len(r.levels) != 2 || r.levels[0] || !r.levels[1] {
		t.Fatalf("levels = %v, want [false true]", r.levels)
	}
	if len(r.holds) != 2 {
		t.Fatalf("recorded %d holds, want 2", len(r.holds))
	}
	for i, h := range r.holds {
		if h != FastPulse {
			t.Errorf("pulse %d held %v, want %v", i, h, FastPulse)
		}
	}
	if len(r.bitbang) != 2 || !r.bitbang[0] || r.bitbang[1] {
		t.Errorf("bit-bang hand-over sequence = %v, want [true false]", r.bitbang)
	}
}

func TestSequencesLeaveLineHigh(t *testing.T) {
	r := &recLine{}
	Fast(r, Config{Delay: r.delay})
	if !r.pinLevel {
		t.Error("fast init left the line low")
	}

	r = &recLine{}
	Slow(r, 0x33, Config{Delay: r.delay})
	if !r.pinLevel {
		t.Error("slow init left the line low")
	}
}
