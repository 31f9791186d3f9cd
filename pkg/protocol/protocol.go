// Package protocol holds the infrared protocols known to irdad.
// Every protocol family is one irda.Spec; a family decodes into messages of
// several protocol names (e.g. NEC and NECext), see Names.
package protocol

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"irdad/pkg/irda"
)

var (
	ErrUnknownProtocol = errors.New("unknown protocol")
)

const (
	// carrier defaults of consumer IR
	defaultFrequency = 38000
	defaultDutyCycle = 0.33
)

// family is implemented by the protocol hooks of every registered Spec.
type family interface {
	// Names returns the message protocol names of the family.
	Names() []string
}

// registry contains all protocol families in detection order.
var registry = []*irda.Spec{
	NEC,
	Samsung32,
	SIRC,
	RC5,
	Kaseikyo,
}

// All returns the specifications of all protocol families.
func All() []*irda.Spec {
	specs := make([]*irda.Spec, len(registry))
	copy(specs, registry)
	return specs
}

// Lookup returns the specification of the family name belongs to.
// name may be a family or a message protocol name and is case insensitive.
func Lookup(name string) (*irda.Spec, error) {
	for _, s := range registry {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
		for _, n := range s.Protocol.(family).Names() {
			if strings.EqualFold(n, name) {
				return s, nil
			}
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownProtocol)
}

// Names returns all message protocol names, sorted.
func Names() []string {
	var names []string
	for _, s := range registry {
		names = append(names, s.Protocol.(family).Names()...)
	}
	sort.Strings(names)
	return names
}

// Canonical returns the registered spelling of the message protocol name.
func Canonical(name string) (string, error) {
	for _, n := range Names() {
		if strings.EqualFold(n, name) {
			return n, nil
		}
	}
	return "", fmt.Errorf("%q: %w", name, ErrUnknownProtocol)
}

// invalid returns an error for a message the protocol can't pack.
func invalid(msg irda.Message, format string, a ...interface{}) error {
	return fmt.Errorf("%s: %s: %w", msg.Protocol, fmt.Sprintf(format, a...), irda.ErrInvalidMessage)
}

// repeatFrame is a fixed repeat frame sent while a key is held.
// It starts with a pause (Space) followed by timings, the first one being a Mark.
type repeatFrame struct {
	// period is the time from the start of one frame to the start of the next one.
	period uint32
	// gap is the shortest pause the encoder sends.
	gap uint32
	// pauses, if set, are fixed pauses before the first and every further repeat frame.
	pauses []uint32
	// pauseMin and pauseMax limit the pause accepted by the decoder, 0 means no limit.
	pauseMin uint32
	pauseMax uint32

	timings    []uint32
	tolerances []uint32
}

// decode matches the buffered samples against the repeat frame.
func (r *repeatFrame) decode(q *irda.Samples) irda.Status {
	for i := 0; i < q.Len() && i <= len(r.timings); i++ {
		s := q.At(i)

		if i == 0 {
			if s.Level || s.Duration <= r.pauseMin || (r.pauseMax != 0 && s.Duration >= r.pauseMax) {
				return irda.StatusError
			}
			continue
		}

		if s.Level != (i%2 == 1) || !irda.Matches(s.Duration, r.timings[i-1], r.tolerances[i-1]) {
			return irda.StatusError
		}
	}

	if q.Len() <= len(r.timings) {
		return irda.StatusOk
	}

	q.Consume(len(r.timings) + 1)
	return irda.StatusReady
}

// encode returns the timings of the repeat frame, the pause first.
func (r *repeatFrame) encode(s irda.RepeatState) (uint32, bool, irda.Status) {
	if s.Step == 0 {
		return r.pause(s), false, irda.StatusOk
	}

	status := irda.StatusOk
	if s.Step == len(r.timings) {
		status = irda.StatusDone
	}
	return r.timings[s.Step-1], s.Step%2 == 1, status
}

func (r *repeatFrame) pause(s irda.RepeatState) uint32 {
	if len(r.pauses) > 0 {
		if s.Count < len(r.pauses) {
			return r.pauses[s.Count]
		}
		return r.pauses[len(r.pauses)-1]
	}

	if s.FrameTime+r.gap < r.period {
		return r.period - s.FrameTime
	}
	return r.gap
}
