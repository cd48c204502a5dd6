package kline

// Hardware collaborators of the line driver. The driver owns no
// register access of its own; everything it touches goes through these
// four capabilities, so the same driver runs over the real peripheral
// on an MCU build and over a simulated one on the host.

// PinOption bits for ConfigurePin.
type PinOption uint8

const (
	// PinHysteresis enables the input Schmitt trigger on a receive pin.
	PinHysteresis PinOption = 1 << iota
	// PinOpenDrain selects open-drain drive on a transmit pin.
	PinOpenDrain
)

// Direction of a GPIO pin.
type Direction uint8

const (
	DirInput Direction = iota
	DirOutput
)

// PinCtrl is the GPIO capability. Misconfiguration is a hardware-state
// bug, not a recoverable condition, so none of these report errors.
type PinCtrl interface {
	ConfigurePin(port, pin int, opts PinOption)
	SetDirection(port, pin int, dir Direction)
	WritePin(port, pin int, level bool)
	ReadPin(port, pin int) bool
}

// PinMux exposes the shared pin-assignment register that routes the
// physical pins either to the UART peripheral or to nothing (raw
// GPIO). SetAssign must be a single store: callers rely on no
// intermediate routing ever being observable.
type PinMux interface {
	Assign() uint32
	SetAssign(v uint32)
}

// Status register bits of the UART peripheral.
type Status uint32

const (
	StatusRxReady   Status = 1 << 0
	StatusTxReady   Status = 1 << 2
	StatusFrameErr  Status = 1 << 13
	StatusParityErr Status = 1 << 14
)

func (s Status) Has(f Status) bool { return s&f != 0 }

// Handle identifies a peripheral instance set up through the vendor
// driver API.
type Handle uint32

// Frame encodes the vendor API's data/parity/stop selection.
type Frame uint8

// Frame8N1 is 8 data bits, no parity, 1 stop bit.
const Frame8N1 Frame = 1

// PortConfig is the vendor init record.
type PortConfig struct {
	ClockHz uint32 // peripheral input clock
	Baud    uint32
	Frame   Frame
	Sync    bool // false selects asynchronous mode
	ErrIRQs bool // false leaves all error interrupts disabled
}

// Peripheral is the vendor UART capability. Setup consumes a scratch
// region of at least ScratchLen bytes; its contents are meaningless
// once Init has been applied and the region may be reused freely.
// ClearStatus has write-1-to-clear semantics.
type Peripheral interface {
	// EnableClock gates the peripheral clock on, pulses the peripheral
	// reset line and restores the default UART clock divider.
	EnableClock()
	DisableIRQ()
	Setup(scratch []byte) Handle
	Init(h Handle, cfg PortConfig)
	SetTxInvert(on bool)
	Status() Status
	ClearStatus(mask Status)
	WriteData(b byte)
	ReadData() byte
}

// Countdown is a one-shot hardware countdown clocked from the core
// clock. Start loads the tick count, zeroes the current value and
// starts it running; Expired stays set once the window has elapsed
// until the next Start or Stop.
type Countdown interface {
	Start(ticks uint32)
	Expired() bool
	Stop()
}

// Hardware bundles the four capabilities a Device is built over.
type Hardware struct {
	Pins  PinCtrl
	Mux   PinMux
	Port  Peripheral
	Timer Countdown
}
