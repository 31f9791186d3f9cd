// Package irda is a generic pulse timing codec for infrared remote controls.
// A Decoder turns alternating mark/space timings into protocol messages,
// an Encoder turns a message back into timings for a transmitter.
//
// https://www.sbprojects.net/knowledge/ir/index.php
package irda

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSpec      = errors.New("invalid protocol specification")
	ErrInvalidMessage   = errors.New("invalid message")
	ErrCapacityExceeded = errors.New("capacity exceeded")
)

// Status is the result of a single codec step.
type Status int

const (
	// StatusOk means continue.
	StatusOk Status = iota
	// StatusError rejects the current timings, the decoder resynchronizes.
	StatusError
	// StatusReady means a full frame is available.
	StatusReady
	// StatusDone means the encoder emitted the last timing of a message.
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusError:
		return "error"
	case StatusReady:
		return "ready"
	case StatusDone:
		return "done"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Message is a decoded (or to be encoded) protocol message.
// Address and Command are defined by the protocol the message belongs to.
type Message struct {
	Protocol string `json:"protocol"`
	Address  uint32 `json:"address"`
	Command  uint32 `json:"command"`
	Repeat   bool   `json:"repeat"`
}

// Sample is one captured timing. Level true is a Mark (carrier on), false a Space.
type Sample struct {
	Level    bool
	Duration uint32
}

// Matches reports whether measured is within the open window nominal ± tolerance.
func Matches(measured, nominal, tolerance uint32) bool {
	if measured >= nominal {
		return measured-nominal < tolerance
	}
	return nominal-measured < tolerance
}
