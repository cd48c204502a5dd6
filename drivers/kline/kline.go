// Package kline drives the single-wire K-line bus (ISO 9141-2 /
// ISO 14230) through one UART peripheral that is switched between two
// mutually exclusive modes: raw GPIO ("bit-bang") for the slow/fast
// bus initialisation pulses, and framed UART for byte traffic once the
// bus rate is known.
//
// TX and RX are tied together through the external transceiver, so
// every transmitted byte echoes back on the receive side. Echo
// consumes and validates that echo within a bounded window; callers
// must run it (or otherwise drain the echo) after every Send before
// the line is free again.
//
// The driver is single-threaded and poll-driven. It holds no locks and
// plumbs no contexts: exactly one execution context may use a Device,
// and the peripheral interrupt line is kept disabled. Construct one
// Device at startup and pass it by pointer; there is no other
// constructor path.
package kline

import (
	"errors"
	"time"

	"diagcode-go/x/mathx"
)

// Reference pin assignment: USART1 on P0.7 (RX) / P0.8 (TX).
const (
	DefaultRxPort = 0
	DefaultRxPin  = 7
	DefaultTxPort = 0
	DefaultTxPin  = 8
)

// ScratchLen is the vendor API's documented minimum setup region.
const ScratchLen = 40

// DefaultEchoWindow bounds the wait for the transceiver echo.
const DefaultEchoWindow = 20 * time.Millisecond

// DefaultClockHz is the reference board core clock.
const DefaultClockHz = 72_000_000

// Route field of this UART's slot in the shared pin-assign register:
// TXD in bits [15:8], RXD in bits [23:16]. Writing 0xFF into a field
// detaches the function from any pin.
const (
	routeShiftTx = 8
	routeShiftRx = 16
	routeMask    = uint32(0xFFFF) << routeShiftTx
)

// Detached reports whether a pin-assign register value leaves this
// UART's pins unrouted, i.e. the route field holds the all-ones
// "unassigned" sentinel and the pins are free for bit-bang use.
func Detached(assign uint32) bool { return assign&routeMask == routeMask }

// Errors returned by Echo. Timeout and mismatch are distinct terminal
// outcomes; the caller owns any retry policy.
var (
	ErrEchoTimeout  = errors.New("kline: echo timeout")
	ErrEchoMismatch = errors.New("kline: echo mismatch")
)

// Config fixes the board-level choices for a Device. The zero value
// selects the reference board: push-pull wiring, 72 MHz core clock,
// P0.7/P0.8 pin pair, 20 ms echo window.
type Config struct {
	Wiring  Wiring
	ClockHz uint32

	RxPort, RxPin int
	TxPort, TxPin int

	// EchoWindow is clamped to [1ms, 1s].
	EchoWindow time.Duration
}

// Device is the line driver. All state beyond the immutable
// configuration lives in the hardware the capabilities expose; in
// particular the bit-bang/UART mode is carried solely by the pin-assign
// register value, never shadowed here.
type Device struct {
	hw  Hardware
	cfg Config

	assign    uint32 // fixed routing encoding for the UART-attached state
	echoTicks uint32
}

// New builds the Device over its hardware capabilities. It touches no
// hardware; call Configure exactly once before any other operation.
func New(hw Hardware, cfg Config) *Device {
	if cfg.ClockHz == 0 {
		cfg.ClockHz = DefaultClockHz
	}
	if cfg.RxPin == 0 && cfg.RxPort == 0 {
		cfg.RxPort, cfg.RxPin = DefaultRxPort, DefaultRxPin
	}
	if cfg.TxPin == 0 && cfg.TxPort == 0 {
		cfg.TxPort, cfg.TxPin = DefaultTxPort, DefaultTxPin
	}
	if cfg.EchoWindow == 0 {
		cfg.EchoWindow = DefaultEchoWindow
	}
	cfg.EchoWindow = mathx.Clamp(cfg.EchoWindow, time.Millisecond, time.Second)

	d := &Device{hw: hw, cfg: cfg}
	d.assign = uint32(cfg.TxPort*32+cfg.TxPin)<<routeShiftTx |
		uint32(cfg.RxPort*32+cfg.RxPin)<<routeShiftRx
	d.echoTicks = uint32(cfg.EchoWindow/time.Millisecond) * (cfg.ClockHz / 1000)
	return d
}

// Config returns the fixed configuration the Device was built with.
func (d *Device) Config() Config { return d.cfg }

// Configure performs the one-time hardware bring-up: pin options per
// the wiring profile, pin directions, peripheral clock and reset, and
// the line driven to its idle-high level. Not safe to run concurrently
// with any other operation.
func (d *Device) Configure() {
	var rxOpts PinOption
	if d.cfg.Wiring == WiringInverted {
		rxOpts |= PinHysteresis
	}
	var txOpts PinOption
	if d.cfg.Wiring == WiringOpenDrain {
		txOpts |= PinOpenDrain
	}
	d.hw.Pins.ConfigurePin(d.cfg.RxPort, d.cfg.RxPin, rxOpts)
	d.hw.Pins.ConfigurePin(d.cfg.TxPort, d.cfg.TxPin, txOpts)
	d.hw.Pins.SetDirection(d.cfg.RxPort, d.cfg.RxPin, DirInput)
	d.hw.Pins.SetDirection(d.cfg.TxPort, d.cfg.TxPin, DirOutput)

	d.hw.Port.EnableClock()

	// K-line idles high.
	d.SetBit(true)
}

// Init programs the peripheral for poll-driven transfer at the given
// rate. It forces bit-bang off first so the vendor setup sees the pins
// routed to the UART, and keeps the interrupt line disabled. The
// vendor calls have no failure path at this layer: if they cannot
// succeed the system is non-functional.
func (d *Device) Init(baud uint32) {
	d.SetBitBang(false)

	d.hw.Port.DisableIRQ()

	// The vendor setup region is only live for the duration of this
	// call; a stack buffer is sufficient.
	var scratch [ScratchLen]byte
	h := d.hw.Port.Setup(scratch[:])
	d.hw.Port.Init(h, PortConfig{
		ClockHz: d.cfg.ClockHz,
		Baud:    baud,
		Frame:   Frame8N1,
	})

	if d.cfg.Wiring == WiringInverted {
		d.hw.Port.SetTxInvert(true)
	}
}

// SetBitBang arbitrates pin ownership. Off restores the UART's fixed
// routing encoding into the route field; on writes the "unassigned"
// all-ones sentinel, detaching the pins so SetBit/GetBit drive them as
// raw GPIO. Both transitions are a single register store, so no
// intermediate routing is ever observable, and both are idempotent.
// This has no notion of bus timing: callers performing ISO slow/fast
// init sequence their own delays.
func (d *Device) SetBitBang(on bool) {
	v := d.hw.Mux.Assign()
	if on {
		v |= routeMask
	} else {
		v = v&^routeMask | d.assign
	}
	d.hw.Mux.SetAssign(v)
}

// Send writes one byte, busy-waiting on transmit-ready first. The wait
// is unbounded: a stuck peripheral hangs the caller, which is accepted
// for the deterministic hardware this targets. The byte will echo back
// on the receive side; collect it with Echo or Get.
func (d *Device) Send(b byte) {
	for !d.hw.Port.Status().Has(StatusTxReady) {
	}
	d.hw.Port.WriteData(b)
}

// Ready reports whether a received byte is waiting.
func (d *Device) Ready() bool {
	return d.hw.Port.Status().Has(StatusRxReady)
}

// Get reads the receive data register unconditionally. Callers must
// have seen Ready first; with no byte waiting the value is stale
// garbage, not an error.
func (d *Device) Get() byte {
	return d.hw.Port.ReadData()
}

// Echo consumes the transceiver echo of the byte just sent and checks
// it arrived intact within the echo window, distinguishing a silent
// line (ErrEchoTimeout) from a corrupted echo (ErrEchoMismatch).
//
// Receive-ready is polled before timer expiry on every pass, and
// re-checked once more after expiry is observed, so a byte that is
// ready in the same instant the window closes is always accepted and
// never silently dropped; the window can end a poll late, never a byte
// short.
func (d *Device) Echo(sent byte) error {
	d.hw.Timer.Start(d.echoTicks)
	defer d.hw.Timer.Stop()

	for {
		if d.Ready() {
			break
		}
		if d.hw.Timer.Expired() {
			if !d.Ready() {
				return ErrEchoTimeout
			}
			break
		}
	}
	if d.Get() != sent {
		return ErrEchoMismatch
	}
	return nil
}

// SetBit drives the transmit pin while in bit-bang mode, honouring the
// wiring profile's polarity.
func (d *Device) SetBit(level bool) {
	if d.cfg.Wiring == WiringInverted {
		level = !level
	}
	d.hw.Pins.WritePin(d.cfg.TxPort, d.cfg.TxPin, level)
}

// GetBit reads the instantaneous receive pin level.
func (d *Device) GetBit() bool {
	return d.hw.Pins.ReadPin(d.cfg.RxPort, d.cfg.RxPin)
}

const statusLineErr = StatusFrameErr | StatusParityErr

// LineError reports whether the peripheral has latched a framing or
// parity fault.
func (d *Device) LineError() bool {
	return d.hw.Port.Status().Has(statusLineErr)
}

// ClearLineError deasserts a latched framing/parity fault: both flags
// are written back (write-1-to-clear) and one stale byte is drained
// from the data register, which the hardware requires to fully release
// the condition. With no fault latched it is a complete no-op. Call it
// after any suspected line fault before resuming normal polling.
func (d *Device) ClearLineError() {
	if d.hw.Port.Status().Has(statusLineErr) {
		d.hw.Port.ClearStatus(statusLineErr)
		d.hw.Port.ReadData()
	}
}
