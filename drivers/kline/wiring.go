package kline

// Wiring selects the transceiver profile the board is built with. The
// profiles are mutually exclusive; the choice is made once per board
// when the Device is constructed.
type Wiring uint8

const (
	// WiringPushPull drives the transmit pin directly, true polarity.
	WiringPushPull Wiring = iota
	// WiringOpenDrain is for transceiver ICs with a pulled-up input
	// (MC33660 class boards).
	WiringOpenDrain
	// WiringInverted is for a simple transistor output stage, which
	// inverts drive polarity and wants hysteresis on the receive pin.
	WiringInverted
)

func (w Wiring) String() string {
	switch w {
	case WiringOpenDrain:
		return "open-drain"
	case WiringInverted:
		return "inverted"
	default:
		return "push-pull"
	}
}
