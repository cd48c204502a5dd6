package kline_test

import (
	"errors"
	"testing"

	"diagcode-go/drivers/kline"
	"diagcode-go/drivers/kline/linesim"
)

func newPort(t *testing.T) (*kline.Port, *linesim.Board) {
	t.Helper()
	d, b := newLine(t, kline.Config{})
	d.Init(10400)
	return d.Port(), b
}

func TestPortWriteByteConsumesEcho(t *testing.T) {
	p, b := newPort(t)

	if err := p.WriteByte(0xC1); err != nil {
		t.Fatalf("WriteByte = %v", err)
	}
	// The echo must be gone: the line is free again.
	if p.Buffered() != 0 {
		t.Error("echo byte left buffered after a successful write")
	}
	if got := b.Writes(); len(got) != 1 || got[0] != 0xC1 {
		t.Errorf("data register writes = %#v", got)
	}
}

func TestPortWriteByteSurfacesEchoFaults(t *testing.T) {
	p, b := newPort(t)

	b.LoopbackOff = true
	if err := p.WriteByte(0x81); !errors.Is(err, kline.ErrEchoTimeout) {
		t.Fatalf("WriteByte on a dead line = %v, want ErrEchoTimeout", err)
	}

	b.InjectRx(0x7E)
	if err := p.WriteByte(0x81); !errors.Is(err, kline.ErrEchoMismatch) {
		t.Fatalf("WriteByte with a corrupted echo = %v, want ErrEchoMismatch", err)
	}
}

func TestPortWriteReportsVerifiedCount(t *testing.T) {
	p, b := newPort(t)

	msg := []byte{0x68, 0x6A, 0xF1, 0x01, 0x00}
	n, err := p.Write(msg)
	if err != nil || n != len(msg) {
		t.Fatalf("Write = (%d, %v)", n, err)
	}

	b.LoopbackOff = true
	n, err = p.Write(msg)
	if !errors.Is(err, kline.ErrEchoTimeout) || n != 0 {
		t.Fatalf("Write on a dead line = (%d, %v), want (0, ErrEchoTimeout)", n, err)
	}
}

func TestPortReadByte(t *testing.T) {
	p, b := newPort(t)

	if _, err := p.ReadByte(); !errors.Is(err, kline.ErrNoData) {
		t.Fatalf("ReadByte with nothing waiting = %v, want ErrNoData", err)
	}

	b.InjectRx(0x55)
	if p.Buffered() != 1 {
		t.Fatal("Buffered() = 0 with a byte waiting")
	}
	v, err := p.ReadByte()
	if err != nil || v != 0x55 {
		t.Fatalf("ReadByte = (%#02x, %v)", v, err)
	}
}

func TestPortReadDrainsWithoutBlocking(t *testing.T) {
	p, b := newPort(t)

	buf := make([]byte, 4)
	n, err := p.Read(buf)
	if err != nil || n != 0 {
		t.Fatalf("Read on an idle line = (%d, %v)", n, err)
	}

	b.InjectRx(0x83)
	n, err = p.Read(buf)
	if err != nil || n != 1 || buf[0] != 0x83 {
		t.Fatalf("Read = (%d, %v), buf[0]=%#02x", n, err, buf[0])
	}
}
