// Package receiver decodes the edges of an IR receiver line with a set of
// protocols and captures the raw timings of signals no protocol knows.
package receiver

import (
	"errors"
	"sync"
	"time"

	"github.com/womat/debug"

	"irdad/pkg/irda"
	"irdad/pkg/port"
)

var ErrInvalidParam = errors.New("invalid parameters")

const (
	// DefaultMaxTimings is the number of raw timings captured per signal.
	DefaultMaxTimings = 512
	// DefaultTimeout is the idle time which ends a signal.
	DefaultTimeout = 150 * time.Millisecond

	// signals is the capacity of channel C.
	signals = 16
)

// Signal is a received IR signal, either a decoded message or the raw
// timings (µs) starting with a Mark.
type Signal struct {
	Time    time.Time    `json:"time"`
	Decoded bool         `json:"decoded"`
	Message irda.Message `json:"message"`
	Timings []uint32     `json:"timings,omitempty"`
}

// Config defines the receiver.
type Config struct {
	// Protocols are the protocols tried on every sample, the first one wins.
	Protocols []*irda.Spec
	// Timeout is the idle time which ends a signal.
	Timeout time.Duration
	// MaxTimings limits the raw capture, a longer signal is an overrun.
	MaxTimings int
	// ActiveLow is set for receivers which pull the line low on a carrier.
	ActiveLow bool
}

// Stats counts the received signals.
type Stats struct {
	Decoded  int
	Raw      int
	Overruns int
	// Decoders holds the counters of every protocol decoder.
	Decoders map[string]irda.Stats
}

// Handler contains the handler to receive signals from an IR receiver line.
type Handler struct {
	decoders []*irda.Decoder
	edges    port.Edges
	timeout  time.Duration

	// timings is the raw capture of the current signal.
	timings    []uint32
	maxTimings int
	// overrun is set if the signal exceeded maxTimings, samples are
	// dropped until the line is idle again.
	overrun bool

	// sl locks stats.
	sl    sync.Mutex
	stats Stats

	// rx channel receives the edges of the receiver line.
	rx <-chan port.Event
	// C is the channel to read the received signals from.
	C chan Signal
	// quit stops the handler.
	quit chan struct{}
	done chan struct{}
}

// New initials a new receiver handler. It does not listen to a line until Start is called.
func New(cfg Config) (*Handler, error) {
	if cfg.Timeout < 0 || cfg.MaxTimings < 0 {
		return nil, ErrInvalidParam
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTimings == 0 {
		cfg.MaxTimings = DefaultMaxTimings
	}

	h := &Handler{
		edges:      port.Edges{ActiveLow: cfg.ActiveLow},
		timeout:    cfg.Timeout,
		timings:    make([]uint32, 0, cfg.MaxTimings),
		maxTimings: cfg.MaxTimings,
		stats:      Stats{Decoders: map[string]irda.Stats{}},
		C:          make(chan Signal, signals),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	for _, spec := range cfg.Protocols {
		d, err := irda.NewDecoder(spec)
		if err != nil {
			return nil, err
		}
		h.decoders = append(h.decoders, d)
	}

	return h, nil
}

// Start listens to the edges on channel rx and sends the signals to channel C.
func (h *Handler) Start(rx <-chan port.Event) {
	h.rx = rx
	go h.run()
}

// Close stops listening and closes channel C.
func (h *Handler) Close() error {
	if h.rx == nil {
		return nil
	}

	close(h.quit)
	// wait until run() is terminated
	<-h.done
	close(h.C)
	return nil
}

// Stats returns a copy of the counters.
func (h *Handler) Stats() Stats {
	h.sl.Lock()
	defer h.sl.Unlock()

	s := h.stats
	s.Decoders = make(map[string]irda.Stats, len(h.stats.Decoders))
	for k, v := range h.stats.Decoders {
		s.Decoders[k] = v
	}
	return s
}

// run converts the edges on channel rx into samples and handles the idle timeout.
func (h *Handler) run() {
	defer close(h.done)

	idle := time.NewTimer(h.timeout)
	stopTimer(idle)

	for {
		select {
		case <-h.quit:
			stopTimer(idle)
			return

		case evt, open := <-h.rx:
			if !open {
				debug.ErrorLog.Println("receiver line closed")
				h.rx = nil
				continue
			}

			stopTimer(idle)
			idle.Reset(h.timeout)

			s, ok := h.edges.Sample(evt)
			if !ok {
				continue
			}
			debug.TraceLog.Printf("sample %v %vµs", s.Level, s.Duration)

			if sig, ok := h.Receive(s); ok {
				h.send(sig)
			}

		case <-idle.C:
			if sig, ok := h.Idle(); ok {
				h.send(sig)
			}
		}
	}
}

func (h *Handler) send(sig Signal) {
	select {
	case h.C <- sig:
	case <-h.quit:
	}
}

// Receive feeds one sample to every decoder and captures it as raw timing.
// It returns a signal if a decoder completed a message.
func (h *Handler) Receive(s irda.Sample) (Signal, bool) {
	if h.overrun {
		return Signal{}, false
	}

	var msg irda.Message
	var decoded bool
	for _, d := range h.decoders {
		if m, ok := d.Decode(s.Level, s.Duration); ok && !decoded {
			msg, decoded = m, true
		}
	}

	if decoded {
		h.timings = h.timings[:0]
		return h.decoded(msg), true
	}

	// the raw capture starts with a Mark
	if len(h.timings) == 0 && !s.Level {
		return Signal{}, false
	}

	if len(h.timings) < h.maxTimings {
		h.timings = append(h.timings, s.Duration)
		return Signal{}, false
	}

	debug.ErrorLog.Printf("overrun, max timings: %v", h.maxTimings)
	h.overrun = true
	h.timings = h.timings[:0]
	h.reset()

	h.sl.Lock()
	h.stats.Overruns++
	h.sl.Unlock()
	return Signal{}, false
}

// Idle ends the current signal. A frame without a final split space is
// decoded now, otherwise the raw timings are returned.
func (h *Handler) Idle() (Signal, bool) {
	defer func() { h.timings = h.timings[:0] }()

	if h.overrun {
		debug.DebugLog.Println("overrun cleared")
		h.overrun = false
		return Signal{}, false
	}

	if len(h.timings) < 2 {
		return Signal{}, false
	}

	for _, d := range h.decoders {
		if msg, ok := d.CheckReady(); ok {
			return h.decoded(msg), true
		}
	}

	h.sl.Lock()
	h.stats.Raw++
	h.collect()
	h.sl.Unlock()

	debug.DebugLog.Printf("raw signal: %v timings", len(h.timings))
	timings := make([]uint32, len(h.timings))
	copy(timings, h.timings)
	return Signal{
		Time:    time.Now(),
		Timings: timings,
	}, true
}

func (h *Handler) decoded(msg irda.Message) Signal {
	debug.DebugLog.Printf("decoded %s address: %#x command: %#x repeat: %v", msg.Protocol, msg.Address, msg.Command, msg.Repeat)

	h.sl.Lock()
	h.stats.Decoded++
	h.collect()
	h.sl.Unlock()

	return Signal{
		Time:    time.Now(),
		Decoded: true,
		Message: msg,
	}
}

// collect copies the decoder counters, sl must be locked.
func (h *Handler) collect() {
	for _, d := range h.decoders {
		h.stats.Decoders[d.Spec().Name] = d.Stats()
	}
}

// reset restarts all decoders.
func (h *Handler) reset() {
	for _, d := range h.decoders {
		d.Reset()
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
