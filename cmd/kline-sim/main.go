//go:build !rp2040 && !rp2350

// kline-sim walks the whole line-driver protocol against the simulated
// board: bring-up, slow and fast init waveforms, echo-verified traffic,
// a forced echo fault and a line-fault clear. Useful as a smoke test
// and as a worked example of the driver's call discipline.
package main

import (
	"encoding/hex"
	"time"

	"diagcode-go/drivers/isoinit"
	"diagcode-go/drivers/kline"
	"diagcode-go/drivers/kline/linesim"
	"diagcode-go/errcode"
)

func main() {
	board := linesim.New()
	line := kline.New(board.Hardware(), kline.Config{Wiring: kline.WiringOpenDrain})

	println("== bring-up ==")
	line.Configure()
	line.Init(10400)
	println("baud:", board.PortConfig().Baud, "irq off:", !board.IRQEnabled())

	println("== fast init ==")
	// No real bus to pace against; collapse the delays.
	isoinit.Fast(line, isoinit.Config{Delay: func(time.Duration) {}})
	line.Init(10400)

	println("== echo-verified request ==")
	req := []byte{0xC1, 0x33, 0xF1, 0x81, 0x66} // ISO 14230 StartCommunication
	n, err := line.Port().Write(req)
	println("sent", n, "of", len(req), "bytes:", hex.EncodeToString(req), "->", string(errcode.MapLineErr(err)))

	println("== dead transceiver ==")
	board.LoopbackOff = true
	line.Send(0x55)
	println("echo:", string(errcode.MapLineErr(line.Echo(0x55))))

	println("== bus contention ==")
	board.InjectRx(0xAA)
	line.Send(0x55)
	println("echo:", string(errcode.MapLineErr(line.Echo(0x55))))

	println("== line fault ==")
	board.InjectFault(false, 0x00)
	println("fault latched:", line.LineError())
	line.ClearLineError()
	println("fault after clear:", line.LineError())
}
