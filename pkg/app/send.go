package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/womat/debug"

	"irdad/pkg/irda"
	"irdad/pkg/mqtt"
	"irdad/pkg/transmitter"
)

// sendRequest is a message or raw timings (µs, starting with a Mark) to send.
type sendRequest struct {
	Protocol string   `json:"protocol"`
	Address  uint32   `json:"address"`
	Command  uint32   `json:"command"`
	Repeats  int      `json:"repeats"`
	Timings  []uint32 `json:"timings"`
}

// send transmits req. Raw timings are sent if no protocol is given.
func (app *App) send(ctx context.Context, req sendRequest) error {
	if app.transmitter == nil {
		return ErrNoTransmitter
	}
	if req.Repeats < 0 || req.Repeats > app.config.Transmitter.MaxRepeats {
		return fmt.Errorf("repeats %v (max %v): %w", req.Repeats, app.config.Transmitter.MaxRepeats, transmitter.ErrInvalidParam)
	}

	if req.Protocol == "" {
		if len(req.Timings) > app.config.Receiver.MaxTimings {
			return fmt.Errorf("%v timings (max %v): %w", len(req.Timings), app.config.Receiver.MaxTimings, transmitter.ErrInvalidParam)
		}
		return app.transmitter.SendRaw(ctx, req.Timings, req.Repeats)
	}

	return app.transmitter.Send(ctx, irda.Message{
		Protocol: req.Protocol,
		Address:  req.Address,
		Command:  req.Command,
	}, req.Repeats)
}

// onMQTTSend is the subscription handler of send requests. Sending takes
// seconds, so it must not block the message router of the mqtt client.
func (app *App) onMQTTSend(msg mqtt.Message) {
	go app.handleMQTTSend(msg)
}

// handleMQTTSend sends the request received from the mqtt broker.
func (app *App) handleMQTTSend(msg mqtt.Message) {
	var req sendRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		debug.ErrorLog.Printf("invalid send request on topic %v: %v", msg.Topic, err)
		return
	}

	if err := app.send(context.Background(), req); err != nil {
		debug.ErrorLog.Printf("can't send %+v: %v", req, err)
	}
}
