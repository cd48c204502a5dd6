// Package isoinit performs the ISO 9141-2 / ISO 14230 bus wake-up
// sequences over the K-line driver's raw pin primitives. Both patterns
// run before the bus rate is configured, so they work at pin level
// with explicit delays rather than through the UART.
//
// The package only produces the wake-up waveform and hands the pins
// back to the UART; reading the sync byte, key bytes or anything else
// the ECU answers with belongs to the session layer above.
package isoinit

import (
	"time"

	"diagcode-go/x/timex"
)

// Line is the slice of the K-line driver the wake-up sequences need.
// *kline.Device satisfies it.
type Line interface {
	SetBitBang(on bool)
	SetBit(level bool)
	GetBit() bool
}

// SlowBaud is the address-byte rate of the ISO 9141-2 slow init.
const SlowBaud = 5

// FastPulse is the TiniL/TiniH half of the 50 ms ISO 14230 fast-init
// wake-up pattern.
const FastPulse = 25 * time.Millisecond

// Config tunes a sequence. The zero value is ready to use.
type Config struct {
	// Delay paces the waveform; defaults to time.Sleep. Tests inject a
	// virtual clock here.
	Delay func(time.Duration)
}

func (c Config) delay() func(time.Duration) {
	if c.Delay != nil {
		return c.Delay
	}
	return time.Sleep
}

// Slow transmits the target address at 5 baud by hand: a 200 ms start
// bit low, the eight data bits LSB-first at 200 ms each, then the stop
// bit high. The pins are handed back to the UART before returning, so
// the caller can immediately reprogram the real bus rate and collect
// the ECU's sync byte.
func Slow(l Line, addr byte, cfg Config) {
	delay := cfg.delay()
	bit := timex.BitPeriod(SlowBaud)

	l.SetBitBang(true)

	l.SetBit(false) // start bit
	delay(bit)
	for i := 0; i < 8; i++ {
		l.SetBit(addr&(1<<i) != 0)
		delay(bit)
	}
	l.SetBit(true) // stop bit
	delay(bit)

	l.SetBitBang(false)
}

// Fast produces the ISO 14230 fast-init wake-up pulse: the line held
// low for 25 ms, then high for 25 ms, after which the pins go back to
// the UART for the StartCommunication exchange.
func Fast(l Line, cfg Config) {
	delay := cfg.delay()

	l.SetBitBang(true)

	l.SetBit(false)
	delay(FastPulse)
	l.SetBit(true)
	delay(FastPulse)

	l.SetBitBang(false)
}
