//go:build !rp2040 && !rp2350

package boards

import (
	"diagcode-go/drivers/kline"
	"diagcode-go/drivers/kline/linesim"
)

// Host builds get a simulated board wired for loopback, so the same
// firmware entry point runs on a workstation.

// New assembles a linesim-backed capability set and the matching
// driver configuration.
func New(wiring kline.Wiring) (kline.Hardware, kline.Config) {
	b := linesim.New()
	if wiring == kline.WiringInverted {
		b.InvertStage = true
	}
	return b.Hardware(), kline.Config{Wiring: wiring}
}
