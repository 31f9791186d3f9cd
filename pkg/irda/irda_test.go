package irda

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestMatches(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		measured uint32
		want     bool
	}{
		{560, true},
		{560 + 119, true},
		{560 - 119, true},
		{560 + 120, false},
		{560 - 120, false},
		{0, false},
		{10000, false},
	}
	for _, test := range tests {
		c.Assert(Matches(test.measured, 560, 120), qt.Equals, test.want, qt.Commentf("measured %d", test.measured))
	}

	// the window must not wrap around for tolerances larger than the nominal value
	c.Assert(Matches(0, 100, 200), qt.IsTrue)
	c.Assert(Matches(^uint32(0), 100, 200), qt.IsFalse)
	c.Assert(Matches(5, 5, 0), qt.IsFalse)
}

func TestSpecValidate(t *testing.T) {
	c := qt.New(t)

	c.Assert(exampleSpec().Validate(), qt.IsNil)
	c.Assert(rc5Spec(14).Validate(), qt.IsNil)
	c.Assert(sircSpec(rawProtocol("sirc")).Validate(), qt.IsNil)

	tests := []struct {
		name   string
		modify func(s *Spec)
	}{
		{"no protocol", func(s *Spec) { s.Protocol = nil }},
		{"no lengths", func(s *Spec) { s.DataBitLen = nil }},
		{"too many lengths", func(s *Spec) { s.DataBitLen = []uint8{32, 24, 16, 8, 4} }},
		{"zero length", func(s *Spec) { s.DataBitLen = []uint8{32, 0} }},
		{"longest not first", func(s *Spec) { s.DataBitLen = []uint8{16, 32} }},
		{"half preamble", func(s *Spec) { s.Timings.PreambleSpace = 0 }},
		{"both pairs distinct", func(s *Spec) { s.Timings.Bit1Mark = 1200 }},
		{"no pair distinct", func(s *Spec) { s.Timings.Bit1Space = 560 }},
		{"zero manchester cell", func(s *Spec) { s.Coding = Manchester; s.Timings.Bit1Mark = 0 }},
		{"unknown coding", func(s *Spec) { s.Coding = Coding(7) }},
	}
	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			s := exampleSpec()
			test.modify(s)
			c.Assert(s.Validate(), qt.ErrorIs, ErrInvalidSpec)

			_, err := NewDecoder(s)
			c.Assert(err, qt.ErrorIs, ErrInvalidSpec)
			_, err = NewEncoder(s)
			c.Assert(err, qt.ErrorIs, ErrInvalidSpec)
		})
	}

	var nilSpec *Spec
	c.Assert(nilSpec.Validate(), qt.ErrorIs, ErrInvalidSpec)
}

func TestSpecLengths(t *testing.T) {
	c := qt.New(t)

	s := sircSpec(rawProtocol("sirc"))
	c.Assert(s.MaxBits(), qt.Equals, 20)
	c.Assert(s.IsLength(20), qt.IsTrue)
	c.Assert(s.IsLength(12), qt.IsTrue)
	c.Assert(s.IsLength(15), qt.IsFalse)
	c.Assert(s.IsLength(0), qt.IsFalse)
}

func TestBits(t *testing.T) {
	c := qt.New(t)

	b := NewBits(12)
	c.Assert(b.Cap(), qt.Equals, 12)
	c.Assert(b.Len(), qt.Equals, 0)

	b.PushUint(0xA5, 8)
	b.Push(true)
	b.Push(false)
	c.Assert(b.Len(), qt.Equals, 10)
	c.Assert(b.Byte(0), qt.Equals, byte(0xA5))
	c.Assert(b.Bytes(), qt.DeepEquals, []byte{0xA5, 0x01})
	c.Assert(b.Bit(0), qt.IsTrue)
	c.Assert(b.Bit(1), qt.IsFalse)
	c.Assert(b.Uint(0, 10), qt.Equals, uint64(0x1A5))
	c.Assert(b.Uint(4, 4), qt.Equals, uint64(0xA))
	c.Assert(b.Full(), qt.IsFalse)

	b.PushUint(3, 2)
	c.Assert(b.Full(), qt.IsTrue)
	c.Assert(catchPanic(func() { b.Push(true) }), qt.Equals, ErrCapacityExceeded)

	b.Reset()
	c.Assert(b.Len(), qt.Equals, 0)
	c.Assert(b.Bytes(), qt.HasLen, 0)
	b.Push(false)
	c.Assert(b.Byte(0), qt.Equals, byte(0))
}

func TestSamples(t *testing.T) {
	c := qt.New(t)

	var q Samples
	for i := 1; i <= SamplesCap; i++ {
		q.push(Sample{Level: i%2 == 1, Duration: uint32(i)})
	}
	c.Assert(q.Len(), qt.Equals, SamplesCap)
	c.Assert(catchPanic(func() { q.push(Sample{}) }), qt.Equals, ErrCapacityExceeded)

	q.Consume(4)
	q.push(Sample{Duration: 7})
	q.push(Sample{Duration: 8})
	c.Assert(q.Len(), qt.Equals, 4)
	for i := 0; i < q.Len(); i++ {
		c.Assert(q.At(i).Duration, qt.Equals, uint32(5+i))
	}

	q.Consume(10)
	c.Assert(q.Len(), qt.Equals, 0)
	c.Assert(catchPanic(func() { q.At(0) }), qt.Not(qt.IsNil))
}

func TestStatusString(t *testing.T) {
	c := qt.New(t)

	c.Assert(StatusOk.String(), qt.Equals, "ok")
	c.Assert(StatusError.String(), qt.Equals, "error")
	c.Assert(StatusReady.String(), qt.Equals, "ready")
	c.Assert(StatusDone.String(), qt.Equals, "done")
	c.Assert(Status(9).String(), qt.Equals, "status(9)")
	c.Assert(Manchester.String(), qt.Equals, "manchester")
}
