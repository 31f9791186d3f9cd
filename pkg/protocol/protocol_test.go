package protocol

import (
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"

	"irdad/pkg/irda"
)

// encode returns the merged timings of the next frame, including its leading silence.
func encode(e *irda.Encoder) []irda.Sample {
	var out []irda.Sample
	for i := 0; i < 1000; i++ {
		d, level, status := e.Encode()
		if n := len(out); n > 0 && out[n-1].Level == level {
			out[n-1].Duration += d
		} else {
			out = append(out, irda.Sample{Level: level, Duration: d})
		}
		if status == irda.StatusDone {
			return out
		}
	}
	panic("no end of frame")
}

func decode(d *irda.Decoder, samples []irda.Sample) []irda.Message {
	var out []irda.Message
	for _, s := range samples {
		if msg, ok := d.Decode(s.Level, s.Duration); ok {
			out = append(out, msg)
		}
	}
	return out
}

func TestSpecs(t *testing.T) {
	c := qt.New(t)

	for _, s := range All() {
		c.Assert(s.Validate(), qt.IsNil, qt.Commentf("%s", s.Name))
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []irda.Message{
		{Protocol: "NEC", Address: 0x04, Command: 0x08},
		{Protocol: "NEC", Address: 0x00, Command: 0xFF},
		{Protocol: "NECext", Address: 0x7F01, Command: 0x15},
		{Protocol: "NEC42", Address: 0x1ABC, Command: 0x55},
		{Protocol: "NEC42ext", Address: 0x2ABCDEF, Command: 0x01},
		{Protocol: "Samsung32", Address: 0x07, Command: 0x02},
		{Protocol: "SIRC", Address: 0x01, Command: 0x15},
		{Protocol: "SIRC15", Address: 0xA5, Command: 0x7F},
		{Protocol: "SIRC20", Address: 0x1FFF, Command: 0x00},
		{Protocol: "RC5", Address: 0x05, Command: 0x35},
		{Protocol: "RC5", Address: 0x00, Command: 0x00},
		{Protocol: "RC5X", Address: 0x1F, Command: 0x70},
		{Protocol: "Kaseikyo", Address: 0x1200231, Command: 0x2A5},
		{Protocol: "Kaseikyo", Address: 0x3FFFFFF, Command: 0x3FF},
	}

	c := qt.New(t)
	for _, msg := range tests {
		msg := msg
		c.Run(fmt.Sprintf("%s/%#x/%#x", msg.Protocol, msg.Address, msg.Command), func(c *qt.C) {
			spec, err := Lookup(msg.Protocol)
			c.Assert(err, qt.IsNil)

			e, err := irda.NewEncoder(spec)
			c.Assert(err, qt.IsNil)
			c.Assert(e.Reset(msg), qt.IsNil)

			d, err := irda.NewDecoder(spec)
			c.Assert(err, qt.IsNil)

			samples := append(encode(e), irda.Sample{Level: false, Duration: spec.Timings.SilenceTime})
			c.Assert(decode(d, samples), qt.DeepEquals, []irda.Message{msg})
		})
	}
}

func TestRepeat(t *testing.T) {
	tests := []irda.Message{
		{Protocol: "NEC", Address: 0x04, Command: 0x08},
		{Protocol: "NEC42", Address: 0x1FFF, Command: 0xFF},
		{Protocol: "Samsung32", Address: 0x07, Command: 0x02},
	}

	c := qt.New(t)
	for _, msg := range tests {
		msg := msg
		c.Run(msg.Protocol, func(c *qt.C) {
			spec, err := Lookup(msg.Protocol)
			c.Assert(err, qt.IsNil)
			e, err := irda.NewEncoder(spec)
			c.Assert(err, qt.IsNil)
			d, err := irda.NewDecoder(spec)
			c.Assert(err, qt.IsNil)

			c.Assert(e.Reset(msg), qt.IsNil)
			var samples []irda.Sample
			for i := 0; i < 3; i++ {
				samples = append(samples, encode(e)...)
			}
			// the next key press
			c.Assert(e.Reset(msg), qt.IsNil)
			samples = append(samples, encode(e)...)
			samples = append(samples, irda.Sample{Level: false, Duration: spec.Timings.SilenceTime})

			repeat := msg
			repeat.Repeat = true
			c.Assert(decode(d, samples), qt.DeepEquals, []irda.Message{msg, repeat, repeat, msg})
		})
	}
}

func TestNECInterpret(t *testing.T) {
	tests := []struct {
		code uint64
		msg  irda.Message
		ok   bool
	}{
		{0xFF00FF00, irda.Message{Protocol: "NEC", Address: 0x00, Command: 0x00}, true},
		{0x00FF00FF, irda.Message{Protocol: "NEC", Address: 0xFF, Command: 0xFF}, true},
		{0xDF20FF00, irda.Message{Protocol: "NEC", Address: 0x00, Command: 0x20}, true},
		{0xFF00F00D, irda.Message{Protocol: "NECext", Address: 0xF00D, Command: 0x00}, true},
		{0xFF000100, irda.Message{Protocol: "NECext", Address: 0x0100, Command: 0x00}, true},
		// inverted command mismatch
		{0xFE00FF00, irda.Message{}, false},
		{0xFF01FF00, irda.Message{}, false},
	}

	c := qt.New(t)
	for _, test := range tests {
		bits := irda.NewBits(42)
		bits.PushUint(test.code, 32)

		msg, ok := NEC.Protocol.Interpret(bits)
		c.Assert(ok, qt.Equals, test.ok, qt.Commentf("%08x", test.code))
		if ok {
			c.Assert(msg, qt.DeepEquals, test.msg)
		}
	}
}

func TestLengthAmbiguity(t *testing.T) {
	c := qt.New(t)

	d, err := irda.NewDecoder(SIRC)
	c.Assert(err, qt.IsNil)
	e, err := irda.NewEncoder(SIRC)
	c.Assert(err, qt.IsNil)

	msgs := []irda.Message{
		{Protocol: "SIRC15", Address: 0x12, Command: 0x34},
		{Protocol: "SIRC", Address: 0x12, Command: 0x34},
		{Protocol: "SIRC20", Address: 0x12, Command: 0x34},
	}
	var samples []irda.Sample
	for _, msg := range msgs {
		c.Assert(e.Reset(msg), qt.IsNil)
		samples = append(samples, encode(e)...)
	}
	samples = append(samples, irda.Sample{Level: false, Duration: sircSilence})

	c.Assert(decode(d, samples), qt.DeepEquals, msgs)
}

func TestPackErrors(t *testing.T) {
	tests := []irda.Message{
		{Protocol: "NEC", Address: 0x100},
		{Protocol: "NEC", Command: 0x100},
		// the high byte is the inverted low byte
		{Protocol: "NECext", Address: 0x00FF},
		{Protocol: "NEC42", Address: 0x2000},
		{Protocol: "NEC42ext", Address: 0x1 | 0x1FFE<<13},
		{Protocol: "Samsung32", Address: 0x100},
		{Protocol: "SIRC", Address: 0x20},
		{Protocol: "SIRC20", Command: 0x80},
		{Protocol: "RC5", Command: 0x40},
		{Protocol: "RC5X", Command: 0x10},
		{Protocol: "RC5", Address: 0x20},
	}

	c := qt.New(t)
	for _, msg := range tests {
		spec, err := Lookup(msg.Protocol)
		c.Assert(err, qt.IsNil)

		bits := irda.NewBits(spec.MaxBits())
		c.Assert(spec.Protocol.Pack(msg, bits), qt.ErrorIs, irda.ErrInvalidMessage, qt.Commentf("%v", msg))
	}

	// a protocol name of another family
	c.Assert(NEC.Protocol.Pack(irda.Message{Protocol: "SIRC"}, irda.NewBits(42)), qt.ErrorIs, irda.ErrInvalidMessage)
}

func TestRC5Toggle(t *testing.T) {
	c := qt.New(t)

	msg := irda.Message{Protocol: "RC5", Address: 0x05, Command: 0x35}

	// packing leaves the shared spec unchanged
	first, second := irda.NewBits(rc5Bits), irda.NewBits(rc5Bits)
	c.Assert(RC5.Protocol.Pack(msg, first), qt.IsNil)
	c.Assert(RC5.Protocol.Pack(msg, second), qt.IsNil)
	c.Assert(first.Bytes(), qt.DeepEquals, second.Bytes())

	// every encoder toggles with its own messages
	a, err := irda.NewEncoder(RC5)
	c.Assert(err, qt.IsNil)
	b, err := irda.NewEncoder(RC5)
	c.Assert(err, qt.IsNil)

	c.Assert(a.Reset(msg), qt.IsNil)
	a1 := encode(a)
	c.Assert(b.Reset(msg), qt.IsNil)
	b1 := encode(b)
	c.Assert(a.Reset(msg), qt.IsNil)
	a2 := encode(a)
	c.Assert(a.Reset(msg), qt.IsNil)
	a3 := encode(a)

	c.Assert(a1, qt.DeepEquals, b1)
	c.Assert(a2, qt.Not(qt.DeepEquals), a1)
	c.Assert(a3, qt.DeepEquals, a1)

	// the toggle bit is not part of the message
	d, err := irda.NewDecoder(RC5)
	c.Assert(err, qt.IsNil)
	// every frame starts with its silence and ends on a mark
	samples := append(append(a1, a2...), irda.Sample{Level: false, Duration: rc5Silence})
	c.Assert(decode(d, samples), qt.DeepEquals, []irda.Message{msg, msg})
}

func TestSIRCFramePeriod(t *testing.T) {
	c := qt.New(t)

	msg := irda.Message{Protocol: "SIRC", Address: 0x01, Command: 0x15}
	e, err := irda.NewEncoder(SIRC)
	c.Assert(err, qt.IsNil)
	c.Assert(e.Reset(msg), qt.IsNil)

	first := encode(e)
	c.Assert(first[0], qt.Equals, irda.Sample{Level: false, Duration: sircSilence})
	ft := e.Elapsed()

	second := encode(e)
	c.Assert(second[0].Duration+ft, qt.Equals, uint32(sircRepeatPeriod))
	c.Assert(second[1:], qt.DeepEquals, first[1:])

	// frames longer than the period keep the silence
	c.Assert(sirc{}.RepeatGap(irda.RepeatState{FrameTime: 40000}), qt.Equals, uint32(sircSilence))

	d, err := irda.NewDecoder(SIRC)
	c.Assert(err, qt.IsNil)
	samples := append(append(first, second...), irda.Sample{Level: false, Duration: sircSilence})
	c.Assert(decode(d, samples), qt.DeepEquals, []irda.Message{msg, msg})
}

func TestKaseikyoInterpret(t *testing.T) {
	c := qt.New(t)

	// Panasonic vendor id 0x2002, genre1 0, genre2 0, data 0x3D
	msg := irda.Message{Protocol: "Kaseikyo", Address: 0x200200, Command: 0x3D}
	bits := irda.NewBits(kaseikyoBits)
	c.Assert(Kaseikyo.Protocol.Pack(msg, bits), qt.IsNil)
	c.Assert(bits.Bytes(), qt.DeepEquals, []byte{0x02, 0x20, 0x00, 0xD0, 0x03, 0xD3})

	got, ok := Kaseikyo.Protocol.Interpret(bits)
	c.Assert(ok, qt.IsTrue)
	c.Assert(got, qt.DeepEquals, msg)

	for i, corrupt := range []func(b []byte){
		func(b []byte) { b[5] ^= 1 },
		func(b []byte) { b[2] ^= 1 },
		func(b []byte) { b[0] ^= 0x10 },
	} {
		raw := append([]byte(nil), bits.Bytes()...)
		corrupt(raw)
		bad := irda.NewBits(kaseikyoBits)
		for _, v := range raw {
			bad.PushUint(uint64(v), 8)
		}
		_, ok := Kaseikyo.Protocol.Interpret(bad)
		c.Assert(ok, qt.IsFalse, qt.Commentf("corruption %d", i))
	}

	c.Assert(Kaseikyo.Protocol.Pack(irda.Message{Protocol: "Kaseikyo", Address: 1 << 26}, irda.NewBits(kaseikyoBits)), qt.ErrorIs, irda.ErrInvalidMessage)
	c.Assert(Kaseikyo.Protocol.Pack(irda.Message{Protocol: "Kaseikyo", Command: 1 << 10}, irda.NewBits(kaseikyoBits)), qt.ErrorIs, irda.ErrInvalidMessage)
}

func TestLookup(t *testing.T) {
	c := qt.New(t)

	for name, want := range map[string]*irda.Spec{
		"nec":       NEC,
		"NECext":    NEC,
		"nec42ext":  NEC,
		"samsung32": Samsung32,
		"SIRC15":    SIRC,
		"sirc":      SIRC,
		"RC5X":      RC5,
		"kaseikyo":  Kaseikyo,
	} {
		spec, err := Lookup(name)
		c.Assert(err, qt.IsNil)
		c.Assert(spec, qt.Equals, want, qt.Commentf("%s", name))
	}

	_, err := Lookup("foo")
	c.Assert(err, qt.ErrorIs, ErrUnknownProtocol)

	c.Assert(Names(), qt.DeepEquals, []string{
		"Kaseikyo",
		"NEC", "NEC42", "NEC42ext", "NECext",
		"RC5", "RC5X",
		"SIRC", "SIRC15", "SIRC20",
		"Samsung32",
	})

	name, err := Canonical("necext")
	c.Assert(err, qt.IsNil)
	c.Assert(name, qt.Equals, "NECext")
	_, err = Canonical("NEC32")
	c.Assert(err, qt.ErrorIs, ErrUnknownProtocol)
}
