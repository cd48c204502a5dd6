//go:build rp2040 || rp2350

package boards

import (
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"diagcode-go/drivers/kline"
	"diagcode-go/x/timex"
)

// RP2-family board: the K-line transceiver hangs off UART1 on its
// default pin pair. There is no LPC-style switch-matrix here, so the
// pin-assign register is shadowed in software and each store re-muxes
// the pins between the PL011 and raw SIO, which preserves the driver's
// route/sentinel logic unchanged.

type rp2Board struct {
	u       *uartx.UART
	clockHz uint32

	assign uint32

	deadline time.Time
	armed    bool
}

// New assembles the board's capability set and the matching driver
// configuration.
func New(wiring kline.Wiring) (kline.Hardware, kline.Config) {
	b := &rp2Board{
		u:       uartx.UART1,
		clockHz: machine.CPUFrequency(),
	}
	cfg := kline.Config{
		Wiring:  wiring,
		ClockHz: b.clockHz,
		TxPort:  int(uartx.UART1_TX_PIN) / 32,
		TxPin:   int(uartx.UART1_TX_PIN) % 32,
		RxPort:  int(uartx.UART1_RX_PIN) / 32,
		RxPin:   int(uartx.UART1_RX_PIN) % 32,
	}
	return kline.Hardware{Pins: b, Mux: b, Port: b, Timer: b}, cfg
}

func pinOf(port, pin int) machine.Pin { return machine.Pin(port*32 + pin) }

// ---- kline.PinCtrl ----

// ConfigurePin: the RP2 pads have fixed hysteresis and no open-drain
// mode; the wiring options are satisfied by the transceiver itself.
func (b *rp2Board) ConfigurePin(port, pin int, opts kline.PinOption) {}

func (b *rp2Board) SetDirection(port, pin int, dir kline.Direction) {
	mode := machine.PinOutput
	if dir == kline.DirInput {
		mode = machine.PinInput
	}
	pinOf(port, pin).Configure(machine.PinConfig{Mode: mode})
}

func (b *rp2Board) WritePin(port, pin int, level bool) { pinOf(port, pin).Set(level) }
func (b *rp2Board) ReadPin(port, pin int) bool         { return pinOf(port, pin).Get() }

// ---- kline.PinMux ----

func (b *rp2Board) Assign() uint32 { return b.assign }

func (b *rp2Board) SetAssign(v uint32) {
	b.assign = v
	tx := machine.Pin(uartx.UART1_TX_PIN)
	rx := machine.Pin(uartx.UART1_RX_PIN)
	if kline.Detached(v) {
		tx.Configure(machine.PinConfig{Mode: machine.PinOutput})
		tx.High()
		rx.Configure(machine.PinConfig{Mode: machine.PinInput})
		return
	}
	tx.Configure(machine.PinConfig{Mode: machine.PinUART})
	rx.Configure(machine.PinConfig{Mode: machine.PinUART})
}

// ---- kline.Peripheral ----

// EnableClock: peripheral clocking and reset are handled by the
// runtime and by Configure; nothing to gate by hand here.
func (b *rp2Board) EnableClock() {}

// DisableIRQ: the uartx driver services its own FIFO interrupts
// internally and surfaces nothing to the application, which is the
// poll-only contract the line driver wants.
func (b *rp2Board) DisableIRQ() {}

// Setup: the PL011 needs no vendor scratch region; the handle is
// nominal.
func (b *rp2Board) Setup(scratch []byte) kline.Handle { return 1 }

func (b *rp2Board) Init(h kline.Handle, cfg kline.PortConfig) {
	_ = b.u.Configure(uartx.UARTConfig{
		BaudRate: cfg.Baud,
		TX:       uartx.UART1_TX_PIN,
		RX:       uartx.UART1_RX_PIN,
	}) // 8N1 is the uartx default, matching Frame8N1
}

// SetTxInvert: the PL011 cannot invert its output. Inverted-wiring
// boards pair with a transceiver profile that does not need it.
func (b *rp2Board) SetTxInvert(on bool) {}

func (b *rp2Board) Status() kline.Status {
	// The software TX ring absorbs single bytes immediately, and the
	// PL011 error flags are consumed inside uartx, so only RX readiness
	// is observable here.
	s := kline.StatusTxReady
	if b.u.Buffered() > 0 {
		s |= kline.StatusRxReady
	}
	return s
}

func (b *rp2Board) ClearStatus(mask kline.Status) {}

func (b *rp2Board) WriteData(v byte) { _ = b.u.WriteByte(v) }

func (b *rp2Board) ReadData() byte {
	v, _ := b.u.ReadByte()
	return v
}

// ---- kline.Countdown ----
// A monotonic-clock deadline stands in for a dedicated hardware
// countdown on this target.

func (b *rp2Board) Start(ticks uint32) {
	b.deadline = time.Now().Add(timex.DurationForTicks(ticks, b.clockHz))
	b.armed = true
}

func (b *rp2Board) Expired() bool {
	return b.armed && !time.Now().Before(b.deadline)
}

func (b *rp2Board) Stop() { b.armed = false }
