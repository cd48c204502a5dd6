// Package linesim is a register-level simulation of the line-driver
// hardware: the pin-multiplexed UART peripheral, the one-shot
// countdown timer, the GPIO pins and an ideal K-line transceiver that
// loops transmit back to receive. It implements all four kline
// capability interfaces on one Board, for driver tests and host runs.
//
// The driver is poll-driven and never yields, so the Board advances
// virtual time from inside the polls themselves: every Status and
// Expired read is one simulation step. Loopback deliveries and the
// countdown are both scheduled in steps, which keeps tests fast and
// fully deterministic.
package linesim

import (
	"diagcode-go/drivers/kline"
)

// DefaultTimerStepTicks is how many countdown ticks elapse per poll
// step. At the reference 72 MHz clock the 20 ms echo window is
// 1.44 M ticks, i.e. 15 steps.
const DefaultTimerStepTicks = 100_000

type delivery struct {
	due int
	b   byte
}

type pinKey struct{ port, pin int }

type pinState struct {
	opts       kline.PinOption
	dir        kline.Direction
	level      bool
	configured bool
}

// Board is one simulated hardware set. The exported fields tune the
// scenario and may be changed between operations, not during one.
type Board struct {
	// EchoAfterSteps is the delay between a data-register write and
	// its loopback echo becoming receive-ready. Values below 1 mean 1.
	EchoAfterSteps int
	// TxBusySteps keeps transmit-ready deasserted for that many steps
	// after each data-register write.
	TxBusySteps int
	// TimerStepTicks overrides DefaultTimerStepTicks when non-zero.
	TimerStepTicks uint32
	// LoopbackOff disconnects the transceiver: transmitted bytes
	// vanish. For timeout scenarios.
	LoopbackOff bool
	// InvertStage emulates a transistor output stage: the bus carries
	// the inverse of the transmit pin while the pins are detached.
	InvertStage bool

	rxPort, rxPin int
	txPort, txPin int

	assign uint32

	stat       kline.Status
	rxData     byte
	portCfg    kline.PortConfig
	handle     kline.Handle
	txInvert   bool
	clockOn    bool
	clkDiv     uint32
	resets     int
	irqEnabled bool
	setupCalls int
	scratchLen int

	reads  int
	writes []byte

	txBusyLeft int

	timerVal     uint32
	timerRunning bool
	timerExpired bool

	pins    map[pinKey]*pinState
	pending []delivery
	steps   int
}

// New builds a Board wired for the reference pin pair. The peripheral
// comes up unclocked with its interrupt line enabled, as real hardware
// does out of reset.
func New() *Board {
	return &Board{
		rxPort: kline.DefaultRxPort, rxPin: kline.DefaultRxPin,
		txPort: kline.DefaultTxPort, txPin: kline.DefaultTxPin,
		irqEnabled: true,
		pins:       make(map[pinKey]*pinState),
	}
}

// Hardware bundles the Board as the driver's capability set.
func (b *Board) Hardware() kline.Hardware {
	return kline.Hardware{Pins: b, Mux: b, Port: b, Timer: b}
}

// step advances virtual time. Called on every Status/Expired poll.
func (b *Board) step() {
	b.steps++
	if b.txBusyLeft > 0 {
		b.txBusyLeft--
		if b.txBusyLeft == 0 {
			b.stat |= kline.StatusTxReady
		}
	}
	if b.timerRunning && !b.timerExpired {
		t := b.TimerStepTicks
		if t == 0 {
			t = DefaultTimerStepTicks
		}
		if b.timerVal <= t {
			b.timerVal = 0
			b.timerExpired = true
		} else {
			b.timerVal -= t
		}
	}
	for len(b.pending) > 0 && b.pending[0].due <= b.steps {
		b.rxData = b.pending[0].b
		b.stat |= kline.StatusRxReady
		b.pending = b.pending[1:]
	}
}

// ---- kline.PinCtrl ----

func (b *Board) pin(port, pin int) *pinState {
	k := pinKey{port, pin}
	p, ok := b.pins[k]
	if !ok {
		p = &pinState{}
		b.pins[k] = p
	}
	return p
}

func (b *Board) ConfigurePin(port, pin int, opts kline.PinOption) {
	p := b.pin(port, pin)
	p.opts = opts
	p.configured = true
}

func (b *Board) SetDirection(port, pin int, dir kline.Direction) {
	b.pin(port, pin).dir = dir
}

func (b *Board) WritePin(port, pin int, level bool) {
	b.pin(port, pin).level = level
}

func (b *Board) ReadPin(port, pin int) bool {
	if port == b.rxPort && pin == b.rxPin {
		return b.busLevel()
	}
	return b.pin(port, pin).level
}

// busLevel models the transceiver: with the pins detached from the
// UART the bus follows the transmit pin (through the optional
// inverting stage); while routed, the UART holds the line at idle.
func (b *Board) busLevel() bool {
	if kline.Detached(b.assign) {
		lvl := b.pin(b.txPort, b.txPin).level
		if b.InvertStage {
			lvl = !lvl
		}
		return lvl
	}
	return true
}

// ---- kline.PinMux ----

func (b *Board) Assign() uint32     { return b.assign }
func (b *Board) SetAssign(v uint32) { b.assign = v }

// ---- kline.Peripheral ----

func (b *Board) EnableClock() {
	b.clockOn = true
	b.resets++
	b.clkDiv = 1
	b.stat |= kline.StatusTxReady
}

func (b *Board) DisableIRQ() { b.irqEnabled = false }

func (b *Board) Setup(scratch []byte) kline.Handle {
	b.setupCalls++
	b.scratchLen = len(scratch)
	b.handle = kline.Handle(uint32(b.setupCalls))
	return b.handle
}

func (b *Board) Init(h kline.Handle, cfg kline.PortConfig) {
	if h == b.handle {
		b.portCfg = cfg
	}
}

func (b *Board) SetTxInvert(on bool) { b.txInvert = on }

func (b *Board) Status() kline.Status {
	b.step()
	return b.stat
}

// ClearStatus honours write-1-to-clear for the error flags only; the
// ready flags are controlled by the data path.
func (b *Board) ClearStatus(mask kline.Status) {
	b.stat &^= mask & (kline.StatusFrameErr | kline.StatusParityErr)
}

func (b *Board) WriteData(v byte) {
	b.writes = append(b.writes, v)
	if b.TxBusySteps > 0 {
		b.stat &^= kline.StatusTxReady
		b.txBusyLeft = b.TxBusySteps
	}
	if b.LoopbackOff {
		return
	}
	after := b.EchoAfterSteps
	if after < 1 {
		after = 1
	}
	b.pending = append(b.pending, delivery{due: b.steps + after, b: v})
}

// ReadData returns the data register and releases receive-ready. With
// nothing received it returns whatever stale value is latched, exactly
// like the hardware.
func (b *Board) ReadData() byte {
	b.reads++
	b.stat &^= kline.StatusRxReady
	return b.rxData
}

// ---- kline.Countdown ----

func (b *Board) Start(ticks uint32) {
	b.timerVal = ticks
	b.timerRunning = true
	b.timerExpired = false
}

func (b *Board) Expired() bool {
	b.step()
	return b.timerExpired
}

func (b *Board) Stop() {
	b.timerRunning = false
	b.timerExpired = false
}

// ---- Scenario controls and introspection ----

// InjectRx makes a byte receive-ready immediately, as if a bus party
// other than the echo had driven the line.
func (b *Board) InjectRx(v byte) {
	b.rxData = v
	b.stat |= kline.StatusRxReady
}

// InjectRxAfter schedules a byte to become receive-ready after the
// given number of steps.
func (b *Board) InjectRxAfter(steps int, v byte) {
	if steps < 1 {
		steps = 1
	}
	b.pending = append(b.pending, delivery{due: b.steps + steps, b: v})
}

// InjectFault latches a framing or parity error with a stale byte in
// the data register, the state a bus glitch leaves behind.
func (b *Board) InjectFault(parity bool, stale byte) {
	if parity {
		b.stat |= kline.StatusParityErr
	} else {
		b.stat |= kline.StatusFrameErr
	}
	b.rxData = stale
}

// StepsToExpiry reports how many poll steps an armed window of the
// given tick count survives.
func (b *Board) StepsToExpiry(ticks uint32) int {
	t := b.TimerStepTicks
	if t == 0 {
		t = DefaultTimerStepTicks
	}
	return int((ticks + t - 1) / t)
}

func (b *Board) Steps() int                   { return b.steps }
func (b *Board) Reads() int                   { return b.reads }
func (b *Board) Writes() []byte               { return b.writes }
func (b *Board) PortConfig() kline.PortConfig { return b.portCfg }
func (b *Board) ScratchLen() int              { return b.scratchLen }
func (b *Board) SetupCalls() int              { return b.setupCalls }
func (b *Board) IRQEnabled() bool             { return b.irqEnabled }
func (b *Board) ClockOn() bool                { return b.clockOn }
func (b *Board) ClockDiv() uint32             { return b.clkDiv }
func (b *Board) Resets() int                  { return b.resets }
func (b *Board) TxInverted() bool             { return b.txInvert }

// PinSetup reports how a pin was configured during bring-up.
func (b *Board) PinSetup(port, pin int) (opts kline.PinOption, dir kline.Direction, ok bool) {
	p, found := b.pins[pinKey{port, pin}]
	if !found || !p.configured {
		return 0, 0, false
	}
	return p.opts, p.dir, true
}

// PinLevel reports the raw output latch of a pin.
func (b *Board) PinLevel(port, pin int) bool {
	return b.pin(port, pin).level
}
