package irda

import "fmt"

// testProtocol is a protocol with hooks defined by the test.
type testProtocol struct {
	interpret func(bits *Bits) (Message, bool)
	pack      func(msg Message, bits *Bits) error
}

func (p testProtocol) Interpret(bits *Bits) (Message, bool) { return p.interpret(bits) }

func (p testProtocol) Pack(msg Message, bits *Bits) error { return p.pack(msg, bits) }

// rawProtocol returns the frame bits as address and the bit count as command.
func rawProtocol(name string) testProtocol {
	return testProtocol{
		interpret: func(bits *Bits) (Message, bool) {
			return Message{Protocol: name, Address: uint32(bits.Uint(0, bits.Len())), Command: uint32(bits.Len())}, true
		},
		pack: func(msg Message, bits *Bits) error {
			bits.PushUint(uint64(msg.Address), int(msg.Command))
			return nil
		},
	}
}

// repeatProtocol is rawProtocol with NEC like repeat frames.
type repeatProtocol struct {
	testProtocol
}

func (p repeatProtocol) DecodeRepeat(q *Samples) Status {
	if q.Len() < 4 {
		return StatusOk
	}
	if q.At(0).Duration > 4000 && Matches(q.At(1).Duration, 9000, 200) &&
		Matches(q.At(2).Duration, 2250, 200) && Matches(q.At(3).Duration, 560, 120) {
		q.Consume(4)
		return StatusReady
	}
	return StatusError
}

func (p repeatProtocol) EncodeRepeat(r RepeatState) (uint32, bool, Status) {
	switch r.Step {
	case 0:
		return 110000 - r.FrameTime, false, StatusOk
	case 1:
		return 9000, true, StatusOk
	case 2:
		return 2250, false, StatusOk
	}
	return 560, true, StatusDone
}

var necTimings = Timings{
	PreambleMark:      9000,
	PreambleSpace:     4500,
	Bit1Mark:          560,
	Bit1Space:         1690,
	Bit0Mark:          560,
	Bit0Space:         560,
	PreambleTolerance: 200,
	BitTolerance:      120,
	SilenceTime:       110000,
}

// exampleSpec is a 32 bit pulse distance protocol without split time.
func exampleSpec() *Spec {
	return &Spec{
		Name:       "example",
		Timings:    necTimings,
		Coding:     PDWM,
		DataBitLen: []uint8{32},
		Protocol:   rawProtocol("example"),
	}
}

// sircSpec is a pulse width protocol with 20 and 12 bit frames.
func sircSpec(p Protocol) *Spec {
	return &Spec{
		Name: "sirc",
		Timings: Timings{
			PreambleMark:      2400,
			PreambleSpace:     600,
			Bit1Mark:          1200,
			Bit1Space:         600,
			Bit0Mark:          600,
			Bit0Space:         600,
			PreambleTolerance: 200,
			BitTolerance:      120,
			SilenceTime:       10000,
			MinSplitTime:      9000,
		},
		Coding:     PDWM,
		DataBitLen: []uint8{20, 12},
		Protocol:   p,
	}
}

// rc5Spec is a manchester protocol starting with the idle space.
func rc5Spec(bits uint8) *Spec {
	return &Spec{
		Name: "rc5",
		Timings: Timings{
			Bit1Mark:          888,
			Bit1Space:         888,
			Bit0Mark:          888,
			Bit0Space:         888,
			PreambleTolerance: 200,
			BitTolerance:      120,
			SilenceTime:       27000,
			MinSplitTime:      2500,
		},
		Coding:                   Manchester,
		ManchesterStartFromSpace: true,
		DataBitLen:               []uint8{bits},
		Protocol:                 rawProtocol("rc5"),
	}
}

// pdwmFrame builds the timings of a PDWM frame of n bits of value.
func pdwmFrame(t Timings, value uint64, n int, stopMark bool) []Sample {
	out := []Sample{{true, t.PreambleMark}, {false, t.PreambleSpace}}
	for i := 0; i < n; i++ {
		if value&(1<<i) != 0 {
			out = append(out, Sample{true, t.Bit1Mark}, Sample{false, t.Bit1Space})
		} else {
			out = append(out, Sample{true, t.Bit0Mark}, Sample{false, t.Bit0Space})
		}
	}
	if stopMark {
		out = append(out, Sample{true, t.Bit1Mark})
	}
	return out
}

// feed decodes all samples and returns the messages.
func feed(d *Decoder, samples []Sample) []Message {
	var out []Message
	for _, s := range samples {
		if msg, ok := d.Decode(s.Level, s.Duration); ok {
			out = append(out, msg)
		}
	}
	return out
}

// merge joins adjacent timings of the same level like the physical line does.
func merge(samples []Sample) []Sample {
	var out []Sample
	for _, s := range samples {
		if n := len(out); n > 0 && out[n-1].Level == s.Level {
			out[n-1].Duration += s.Duration
			continue
		}
		out = append(out, s)
	}
	return out
}

// encodeFrame pulls timings until the encoder reports StatusDone.
func encodeFrame(e *Encoder) []Sample {
	var out []Sample
	for i := 0; i < 1000; i++ {
		duration, level, status := e.Encode()
		out = append(out, Sample{level, duration})
		if status == StatusDone {
			return out
		}
	}
	panic(fmt.Sprintf("%s: no end of frame", e.spec.Name))
}

func catchPanic(f func()) (r interface{}) {
	defer func() { r = recover() }()
	f()
	return nil
}
