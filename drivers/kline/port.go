package kline

import (
	"errors"

	"tinygo.org/x/drivers"
)

// ErrNoData is returned by Port.ReadByte when no byte is waiting.
var ErrNoData = errors.New("kline: no byte ready")

// Port presents a Device as a drivers.UART, with the half-duplex
// discipline folded in: every write consumes and validates its own
// transceiver echo before reporting success, so the line is free again
// whenever a write returns. Reads are non-blocking and unbuffered; the
// peripheral holds at most one byte.
//
// This is the seam a protocol layer plugs into. The Port adds no
// framing, buffering or retries.
type Port struct {
	d *Device
}

var _ drivers.UART = (*Port)(nil)

// Port returns the drivers.UART view of the line.
func (d *Device) Port() *Port { return &Port{d: d} }

// WriteByte sends one byte and consumes its echo. An echo fault
// surfaces as the write error (ErrEchoTimeout or ErrEchoMismatch).
func (p *Port) WriteByte(b byte) error {
	p.d.Send(b)
	return p.d.Echo(b)
}

// Write sends byte-at-a-time: each byte's echo must clear the line
// before the next may go out. On error it reports how many bytes made
// it onto the bus verified.
func (p *Port) Write(buf []byte) (int, error) {
	for i, b := range buf {
		if err := p.WriteByte(b); err != nil {
			return i, err
		}
	}
	return len(buf), nil
}

// Buffered reports 1 when a byte is waiting, else 0.
func (p *Port) Buffered() int {
	if p.d.Ready() {
		return 1
	}
	return 0
}

// ReadByte returns the waiting byte, or ErrNoData.
func (p *Port) ReadByte() (byte, error) {
	if !p.d.Ready() {
		return 0, ErrNoData
	}
	return p.d.Get(), nil
}

// Read drains whatever is ready into buf without blocking.
func (p *Port) Read(buf []byte) (int, error) {
	n := 0
	for n < len(buf) && p.d.Ready() {
		buf[n] = p.d.Get()
		n++
	}
	return n, nil
}
