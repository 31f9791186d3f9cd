package app

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"

	"irdad/pkg/receiver"
)

// HandleHealth returns data about the health of myself.
// output example:
//  {"NumGoroutines":11,"NumCPU":4,"HeapAllocatedBytes":332256360,"HeapAllocatedMB":316,
//   "SysMemoryBytes":360290312,"SysMemoryMB":343,"Version":"1.6.10+20261001","ProgLang":"go1.16.2",
//   "Receiver":{"Decoded":12,"Raw":1,"Overruns":0,"Decoders":{...}},"DroppedEdges":0,"Transmitter":true}
func (app *App) HandleHealth() fiber.Handler {
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}

	host, _ := os.Hostname()

	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request health")

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		hab := m.Alloc
		smb := m.Sys

		healthData := struct {
			NumGoroutines      int
			NumCPU             int
			HeapAllocatedBytes uint64
			HeapAllocatedMB    uint64
			SysMemoryBytes     uint64
			SysMemoryMB        uint64
			Version            string
			ProgLang           string
			HostName           string
			Time               string
			Receiver           receiver.Stats
			DroppedEdges       uint64
			Transmitter        bool
		}{
			NumGoroutines:      runtime.NumGoroutine(),
			NumCPU:             runtime.NumCPU(),
			HeapAllocatedBytes: hab,
			HeapAllocatedMB:    bToMb(hab),
			SysMemoryBytes:     smb,
			SysMemoryMB:        bToMb(smb),
			ProgLang:           runtime.Version(),
			Version:            VERSION,
			HostName:           host,
			Time:               time.Now().Format(time.RFC3339),
			Receiver:           app.receiver.Stats(),
			Transmitter:        app.transmitter != nil,
		}
		if app.line != nil {
			healthData.DroppedEdges = app.line.Dropped()
		}
		ctx.Status(http.StatusOK)
		return ctx.JSON(healthData)
	}
}
