// Package transmitter sends protocol messages and raw signals through an IR LED.
package transmitter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/womat/debug"

	"irdad/pkg/irda"
	"irdad/pkg/protocol"
)

var ErrInvalidParam = errors.New("invalid parameters")

const (
	// DefaultFrequency and DefaultDutyCycle are the carrier of raw signals.
	DefaultFrequency = 38000
	DefaultDutyCycle = 0.33
	// RawDelay is the Space sent before every raw signal.
	RawDelay = 180 * time.Millisecond
)

// Sink is the output stage of the transmitter.
type Sink interface {
	// Configure sets the carrier of the following timings.
	Configure(frequency uint32, dutyCycle float32) error
	// Transmit holds the carrier on (level true) or off for d.
	Transmit(level bool, d time.Duration) error
}

// Handler contains the handler to send signals. Sends are serialized.
type Handler struct {
	sink Sink

	// tl locks the sink while a signal is sent.
	tl       sync.Mutex
	encoders map[*irda.Spec]*irda.Encoder

	// the carrier the sink is configured with
	frequency uint32
	dutyCycle float32
}

// New initials a new transmitter handler.
func New(sink Sink) *Handler {
	return &Handler{
		sink:     sink,
		encoders: map[*irda.Spec]*irda.Encoder{},
	}
}

// Send sends msg and the given number of repeats. Protocols with repeat
// frames send those, all others resend the whole frame.
func (h *Handler) Send(ctx context.Context, msg irda.Message, repeats int) (err error) {
	if repeats < 0 {
		return ErrInvalidParam
	}

	spec, err := protocol.Lookup(msg.Protocol)
	if err != nil {
		return err
	}
	if msg.Protocol, err = protocol.Canonical(msg.Protocol); err != nil {
		return err
	}

	h.tl.Lock()
	defer h.tl.Unlock()

	e, ok := h.encoders[spec]
	if !ok {
		if e, err = irda.NewEncoder(spec); err != nil {
			return err
		}
		h.encoders[spec] = e
	}
	if err = e.Reset(msg); err != nil {
		return err
	}

	if err = h.configure(spec.Frequency, spec.DutyCycle); err != nil {
		return err
	}
	defer h.release(&err)

	debug.DebugLog.Printf("sending %s address: %#x command: %#x repeats: %v", msg.Protocol, msg.Address, msg.Command, repeats)

	for frame := 0; frame <= repeats; frame++ {
		for {
			if err = ctx.Err(); err != nil {
				return err
			}

			d, level, status := e.Encode()
			if err = h.sink.Transmit(level, time.Duration(d)*time.Microsecond); err != nil {
				return fmt.Errorf("transmit: %w", err)
			}
			if status == irda.StatusDone {
				break
			}
		}
	}

	return nil
}

// SendRaw sends raw timings (µs, starting with a Mark) with the common
// carrier. Every repetition starts with RawDelay.
func (h *Handler) SendRaw(ctx context.Context, timings []uint32, repeats int) (err error) {
	if len(timings) == 0 || repeats < 0 {
		return ErrInvalidParam
	}

	h.tl.Lock()
	defer h.tl.Unlock()

	if err = h.configure(DefaultFrequency, DefaultDutyCycle); err != nil {
		return err
	}
	defer h.release(&err)

	debug.DebugLog.Printf("sending %v raw timings, repeats: %v", len(timings), repeats)

	for frame := 0; frame <= repeats; frame++ {
		if err = h.sink.Transmit(false, RawDelay); err != nil {
			return fmt.Errorf("transmit: %w", err)
		}

		for i, t := range timings {
			if err = ctx.Err(); err != nil {
				return err
			}
			if err = h.sink.Transmit(i%2 == 0, time.Duration(t)*time.Microsecond); err != nil {
				return fmt.Errorf("transmit: %w", err)
			}
		}
	}

	return nil
}

// configure reconfigures the sink if the carrier changed.
func (h *Handler) configure(frequency uint32, dutyCycle float32) error {
	if frequency == h.frequency && dutyCycle == h.dutyCycle {
		return nil
	}

	debug.DebugLog.Printf("carrier %v Hz, duty cycle %v", frequency, dutyCycle)
	if err := h.sink.Configure(frequency, dutyCycle); err != nil {
		return fmt.Errorf("configure: %w", err)
	}

	h.frequency = frequency
	h.dutyCycle = dutyCycle
	return nil
}

// release switches the carrier off after a signal, even if it was aborted.
func (h *Handler) release(err *error) {
	if e := h.sink.Transmit(false, 0); e != nil && *err == nil {
		*err = fmt.Errorf("transmit: %w", e)
	}
}
