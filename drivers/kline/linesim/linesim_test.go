package linesim

import (
	"testing"

	"diagcode-go/drivers/kline"
)

func TestStatusErrorBitsAreWriteOneToClear(t *testing.T) {
	b := New()
	b.EnableClock()
	b.InjectFault(false, 0xAA)
	b.InjectFault(true, 0xAA)

	// Writing the ready bits back must not clear them.
	b.ClearStatus(kline.StatusTxReady)
	if !b.Status().Has(kline.StatusTxReady) {
		t.Error("TXRDY cleared by a status write")
	}

	b.ClearStatus(kline.StatusFrameErr | kline.StatusParityErr)
	if s := b.Status(); s.Has(kline.StatusFrameErr) || s.Has(kline.StatusParityErr) {
		t.Errorf("error flags survived write-1-to-clear: %#04x", uint32(s))
	}
}

func TestLoopbackDeliveryAfterSteps(t *testing.T) {
	b := New()
	b.EnableClock()
	b.EchoAfterSteps = 3

	b.WriteData(0x5A)
	for i := 0; i < 2; i++ {
		if b.Status().Has(kline.StatusRxReady) {
			t.Fatalf("echo ready after %d steps, want 3", i+1)
		}
	}
	if !b.Status().Has(kline.StatusRxReady) {
		t.Fatal("echo not ready after 3 steps")
	}
	if v := b.ReadData(); v != 0x5A {
		t.Errorf("echoed byte = %#02x", v)
	}
	if b.Status().Has(kline.StatusRxReady) {
		t.Error("RXRDY still set after the data register read")
	}
}

func TestCountdownExpiry(t *testing.T) {
	b := New()
	b.TimerStepTicks = 10

	b.Start(25)
	steps := 0
	for !b.Expired() {
		steps++
		if steps > 10 {
			t.Fatal("countdown never expired")
		}
	}
	if want := b.StepsToExpiry(25); steps+1 != want {
		t.Errorf("expired after %d polls, want %d", steps+1, want)
	}

	b.Stop()
	if b.Expired() {
		t.Error("Expired still set after Stop")
	}
}

func TestBusFollowsTxOnlyWhenDetached(t *testing.T) {
	b := New()
	b.SetAssign(0) // routed (field not at the sentinel)

	b.WritePin(kline.DefaultTxPort, kline.DefaultTxPin, false)
	if !b.ReadPin(kline.DefaultRxPort, kline.DefaultRxPin) {
		t.Error("routed bus should idle high regardless of the GPIO latch")
	}

	b.SetAssign(0x00FFFF00) // detached sentinel in the route field
	if b.ReadPin(kline.DefaultRxPort, kline.DefaultRxPin) {
		t.Error("detached bus should follow the low TX latch")
	}
	b.WritePin(kline.DefaultTxPort, kline.DefaultTxPin, true)
	if !b.ReadPin(kline.DefaultRxPort, kline.DefaultRxPin) {
		t.Error("detached bus should follow the high TX latch")
	}
}
