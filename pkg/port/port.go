// Package port holds the definition of a physical port and converts its
// edges into codec samples.
package port

import (
	"math"
	"time"

	"irdad/pkg/irda"
)

// EventType indicates the type of change to the line active state.
//
// Note that for active low lines a low line level results in a high active
// state.
type EventType int

const (
	_ EventType = iota
	// RisingEdge indicates an inactive to active event (low to high).
	RisingEdge
	// FallingEdge indicates an active to inactive event (high to low).
	FallingEdge
)

func (t EventType) String() string {
	switch t {
	case RisingEdge:
		return "rising"
	case FallingEdge:
		return "falling"
	}
	return "invalid"
}

type Event struct {
	// Timestamp indicates the time the event was detected.
	Timestamp time.Duration
	// The type of state change event this structure represents.
	Type EventType
}

// Edges converts line events into samples.
// The sample ended by an event has the level the line had before the event
// and lasts since the previous event.
type Edges struct {
	// ActiveLow is set for receivers which pull the line low while a carrier
	// is detected (e.g. TSOP38238).
	ActiveLow bool

	last    time.Duration
	started bool
}

// Sample returns the sample ended by evt. The first event after a Reset only
// starts the measurement.
func (e *Edges) Sample(evt Event) (irda.Sample, bool) {
	if !e.started || evt.Timestamp < e.last {
		e.started = true
		e.last = evt.Timestamp
		return irda.Sample{}, false
	}

	d := (evt.Timestamp - e.last) / time.Microsecond
	e.last = evt.Timestamp
	if d > math.MaxUint32 {
		d = math.MaxUint32
	}

	// the line was high before a falling edge
	high := evt.Type == FallingEdge
	return irda.Sample{
		Level:    high != e.ActiveLow,
		Duration: uint32(d),
	}, true
}

// Reset restarts the measurement with the next event.
func (e *Edges) Reset() {
	e.started = false
	e.last = 0
}
