package main

import (
	"time"

	"diagcode-go/boards"
	"diagcode-go/drivers/isoinit"
	"diagcode-go/drivers/kline"
	"diagcode-go/errcode"
)

// Firmware-style entry: bring the K-line up, wake the bus with a fast
// init, then probe it periodically. On an RP2 build this talks to a
// real transceiver; on a host build it runs against the simulated
// loopback board.
func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	hw, cfg := boards.New(kline.WiringOpenDrain)
	line := kline.New(hw, cfg)
	line.Configure()

	println("fast init")
	isoinit.Fast(line, isoinit.Config{})
	line.Init(10400)

	tick := time.NewTicker(1 * time.Second)
	defer tick.Stop()

	for range tick.C {
		line.Send(0x55)
		if err := line.Echo(0x55); err != nil {
			println("probe:", string(errcode.MapLineErr(err)))
			line.ClearLineError()
			continue
		}
		println("probe: ok")
	}
}
