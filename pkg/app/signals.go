package app

import (
	"encoding/json"
	"sync"

	"github.com/womat/debug"

	"irdad/pkg/mqtt"
	"irdad/pkg/receiver"
)

// history keeps the most recent signals, the oldest first.
type history struct {
	sync.RWMutex
	size    int
	signals []receiver.Signal
}

func newHistory(size int) *history {
	return &history{size: size, signals: make([]receiver.Signal, 0, size)}
}

func (h *history) add(sig receiver.Signal) {
	if h.size == 0 {
		return
	}

	h.Lock()
	defer h.Unlock()

	if len(h.signals) == h.size {
		copy(h.signals, h.signals[1:])
		h.signals = h.signals[:h.size-1]
	}
	h.signals = append(h.signals, sig)
}

// get returns a copy of the recent signals.
func (h *history) get() []receiver.Signal {
	h.RLock()
	defer h.RUnlock()

	s := make([]receiver.Signal, len(h.signals))
	copy(s, h.signals)
	return s
}

// service waits for received signals until the receiver is closed.
// It saves every signal to the history and sends it to the mqtt broker.
func (app *App) service() {
	for sig := range app.receiver.C {
		app.record(sig)
	}
	debug.InfoLog.Println("receiver closed")
}

func (app *App) record(sig receiver.Signal) {
	if sig.Decoded {
		debug.InfoLog.Printf("received %s address: %#x command: %#x repeat: %v",
			sig.Message.Protocol, sig.Message.Address, sig.Message.Command, sig.Message.Repeat)
	} else {
		debug.InfoLog.Printf("received raw signal with %v timings", len(sig.Timings))
	}

	app.history.add(sig)

	if app.config.MQTT.Connection == "" || app.config.MQTT.Topic == "" {
		return
	}

	payload, err := json.Marshal(sig)
	if err != nil {
		debug.ErrorLog.Printf("can't marshal signal: %v", err)
		return
	}

	topic := app.config.MQTT.Topic + "/raw"
	if sig.Decoded {
		topic = app.config.MQTT.Topic + "/" + sig.Message.Protocol
	}
	app.mqtt.C <- mqtt.Message{Topic: topic, Payload: payload}
}
