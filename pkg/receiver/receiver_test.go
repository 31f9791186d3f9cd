package receiver

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"irdad/pkg/irda"
	"irdad/pkg/port"
	"irdad/pkg/protocol"
)

// frame returns the merged timings of msg without the leading silence.
func frame(c *qt.C, msg irda.Message) []irda.Sample {
	spec, err := protocol.Lookup(msg.Protocol)
	c.Assert(err, qt.IsNil)
	e, err := irda.NewEncoder(spec)
	c.Assert(err, qt.IsNil)
	c.Assert(e.Reset(msg), qt.IsNil)

	var out []irda.Sample
	for {
		d, level, status := e.Encode()
		if n := len(out); n > 0 && out[n-1].Level == level {
			out[n-1].Duration += d
		} else {
			out = append(out, irda.Sample{Level: level, Duration: d})
		}
		if status == irda.StatusDone {
			return out[1:]
		}
	}
}

// events returns the edges of an active high line sending samples.
func events(samples []irda.Sample) []port.Event {
	t := time.Second
	out := []port.Event{{Timestamp: t, Type: port.RisingEdge}}
	for _, s := range samples {
		t += time.Duration(s.Duration) * time.Microsecond
		typ := port.RisingEdge
		if s.Level {
			typ = port.FallingEdge
		}
		out = append(out, port.Event{Timestamp: t, Type: typ})
	}
	return out
}

func receive(h *Handler, samples []irda.Sample) []Signal {
	var out []Signal
	for _, s := range samples {
		if sig, ok := h.Receive(s); ok {
			out = append(out, sig)
		}
	}
	return out
}

func TestReceiveDecoded(t *testing.T) {
	c := qt.New(t)

	h, err := New(Config{Protocols: protocol.All()})
	c.Assert(err, qt.IsNil)

	msg := irda.Message{Protocol: "NEC", Address: 0x04, Command: 0x08}
	samples := append([]irda.Sample{{Level: false, Duration: 200000}}, frame(c, msg)...)
	samples = append(samples, irda.Sample{Level: false, Duration: 200000})

	sigs := receive(h, samples)
	c.Assert(sigs, qt.HasLen, 1)
	c.Assert(sigs[0].Decoded, qt.IsTrue)
	c.Assert(sigs[0].Message, qt.DeepEquals, msg)
	c.Assert(sigs[0].Timings, qt.HasLen, 0)

	// nothing left for the idle timeout
	_, ok := h.Idle()
	c.Assert(ok, qt.IsFalse)

	s := h.Stats()
	c.Assert(s.Decoded, qt.Equals, 1)
	c.Assert(s.Raw, qt.Equals, 0)
	c.Assert(s.Decoders["NEC"], qt.DeepEquals, irda.Stats{})
	c.Assert(s.Decoders, qt.HasLen, len(protocol.All()))
}

func TestIdleCheckReady(t *testing.T) {
	c := qt.New(t)

	h, err := New(Config{Protocols: protocol.All()})
	c.Assert(err, qt.IsNil)

	// the last space of a SIRC frame merges into the idle line
	msg := irda.Message{Protocol: "SIRC", Address: 0x01, Command: 0x15}
	c.Assert(receive(h, frame(c, msg)), qt.HasLen, 0)

	sig, ok := h.Idle()
	c.Assert(ok, qt.IsTrue)
	c.Assert(sig.Decoded, qt.IsTrue)
	c.Assert(sig.Message, qt.DeepEquals, msg)
}

func TestIdleRaw(t *testing.T) {
	c := qt.New(t)

	h, err := New(Config{Protocols: protocol.All()})
	c.Assert(err, qt.IsNil)

	samples := []irda.Sample{
		// a leading space is not captured
		{Level: false, Duration: 20000},
		{Level: true, Duration: 3000},
		{Level: false, Duration: 3000},
		{Level: true, Duration: 3000},
		{Level: false, Duration: 6000},
		{Level: true, Duration: 500},
	}
	c.Assert(receive(h, samples), qt.HasLen, 0)

	sig, ok := h.Idle()
	c.Assert(ok, qt.IsTrue)
	c.Assert(sig.Decoded, qt.IsFalse)
	c.Assert(sig.Timings, qt.DeepEquals, []uint32{3000, 3000, 3000, 6000, 500})
	c.Assert(sig.Time.IsZero(), qt.IsFalse)
	c.Assert(h.Stats().Raw, qt.Equals, 1)

	// a single timing is no signal
	receive(h, []irda.Sample{{Level: true, Duration: 3000}})
	_, ok = h.Idle()
	c.Assert(ok, qt.IsFalse)
}

func TestOverrun(t *testing.T) {
	c := qt.New(t)

	h, err := New(Config{Protocols: protocol.All(), MaxTimings: 4})
	c.Assert(err, qt.IsNil)

	var samples []irda.Sample
	for i := 0; i < 10; i++ {
		samples = append(samples, irda.Sample{Level: i%2 == 0, Duration: 3000})
	}
	c.Assert(receive(h, samples), qt.HasLen, 0)
	c.Assert(h.Stats().Overruns, qt.Equals, 1)

	// the timeout clears the overrun without a signal
	_, ok := h.Idle()
	c.Assert(ok, qt.IsFalse)

	c.Assert(receive(h, samples[:3]), qt.HasLen, 0)
	sig, ok := h.Idle()
	c.Assert(ok, qt.IsTrue)
	c.Assert(sig.Timings, qt.DeepEquals, []uint32{3000, 3000, 3000})
}

func TestNewInvalid(t *testing.T) {
	c := qt.New(t)

	_, err := New(Config{Timeout: -time.Second})
	c.Assert(err, qt.ErrorIs, ErrInvalidParam)

	_, err = New(Config{Protocols: []*irda.Spec{{Name: "broken"}}})
	c.Assert(err, qt.ErrorIs, irda.ErrInvalidSpec)
}

func TestRun(t *testing.T) {
	c := qt.New(t)

	h, err := New(Config{Protocols: protocol.All(), Timeout: 20 * time.Millisecond})
	c.Assert(err, qt.IsNil)

	rx := make(chan port.Event, 100)
	h.Start(rx)

	msg := irda.Message{Protocol: "SIRC15", Address: 0xA5, Command: 0x7F}
	for _, evt := range events(frame(c, msg)) {
		rx <- evt
	}

	select {
	case sig := <-h.C:
		c.Assert(sig.Decoded, qt.IsTrue)
		c.Assert(sig.Message, qt.DeepEquals, msg)
	case <-time.After(5 * time.Second):
		c.Fatal("no signal received")
	}

	c.Assert(h.Close(), qt.IsNil)
	_, open := <-h.C
	c.Assert(open, qt.IsFalse)
}
