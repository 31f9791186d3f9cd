package irda

import "fmt"

// maxDataBitLen is the number of frame length variants a Spec may declare.
const maxDataBitLen = 4

// Coding selects the bit encoding strategy of a protocol.
type Coding int

const (
	// PDWM is pulse distance / pulse width modulation.
	PDWM Coding = iota
	// Manchester is biphase coding with a fixed cell (2 × Bit1Mark).
	Manchester
)

func (c Coding) String() string {
	switch c {
	case PDWM:
		return "pdwm"
	case Manchester:
		return "manchester"
	}
	return fmt.Sprintf("coding(%d)", int(c))
}

// Timings holds the timing constants of a protocol.
// All values share the tick unit of the sample source (microseconds in this repository).
type Timings struct {
	// PreambleMark and PreambleSpace are the frame start; 0 means no preamble.
	PreambleMark  uint32
	PreambleSpace uint32
	// Bit1Mark, Bit1Space, Bit0Mark and Bit0Space define the bit cells.
	// For PDWM exactly one of the pairs (marks or spaces) differs.
	// For Manchester Bit1Mark is the half cell.
	Bit1Mark  uint32
	Bit1Space uint32
	Bit0Mark  uint32
	Bit0Space uint32

	PreambleTolerance uint32
	BitTolerance      uint32

	// SilenceTime is the gap the encoder sends before every frame.
	SilenceTime uint32
	// MinSplitTime, if set, is the shortest Space that ends a frame.
	MinSplitTime uint32
}

// Protocol holds the protocol specific hooks of a Spec.
type Protocol interface {
	// Interpret extracts a message from the accumulated bits.
	// It returns false if the bits are no valid frame (e.g. checksum mismatch).
	Interpret(bits *Bits) (Message, bool)
	// Pack writes the raw frame bits of msg into bits.
	Pack(msg Message, bits *Bits) error
}

// RepeatDecoder is implemented by protocols with repeat frames.
// DecodeRepeat inspects the buffered samples: StatusOk waits for more samples
// (at most SamplesCap may be buffered), StatusReady must consume the repeat frame,
// StatusError leaves the samples for resynchronization.
type RepeatDecoder interface {
	DecodeRepeat(samples *Samples) Status
}

// RepeatState is passed to a RepeatEncoder on every call.
type RepeatState struct {
	// Step is the index of the timing within the current repeat frame.
	Step int
	// Count is the number of repeat frames finished so far.
	Count int
	// FrameTime is the duration of the previous frame without its leading gap.
	FrameTime uint32
}

// RepeatEncoder is implemented by protocols with repeat frames.
// EncodeRepeat returns StatusDone with the last timing of each repeat frame.
type RepeatEncoder interface {
	EncodeRepeat(r RepeatState) (duration uint32, level bool, status Status)
}

// SequencePacker is implemented by protocols whose frame depends on the
// number of messages an encoder packed before, e.g. a toggle bit.
// The Encoder calls PackSequence instead of Pack; seq counts from 0 per Encoder.
type SequencePacker interface {
	PackSequence(msg Message, seq uint32, bits *Bits) error
}

// FrameRepeater is implemented by protocols without repeat frames which
// resend the whole frame at a fixed period. RepeatGap returns the Space sent
// before every further copy of the frame instead of the silence.
type FrameRepeater interface {
	RepeatGap(r RepeatState) uint32
}

// Spec describes one protocol. A Spec is read only once a Decoder or
// Encoder was built from it and may be shared by any number of them.
type Spec struct {
	Name    string
	Timings Timings
	Coding  Coding
	// ManchesterStartFromSpace injects a leading 0 bit whose first half
	// cell is the (invisible) idle Space.
	ManchesterStartFromSpace bool
	// DataBitLen lists the valid frame lengths in bits, longest first.
	DataBitLen []uint8
	// Frequency (Hz) and DutyCycle of the carrier, used by transmitters.
	Frequency uint32
	DutyCycle float32

	Protocol Protocol
}

// Validate checks the invariants of the specification.
func (s *Spec) Validate() error {
	if s == nil {
		return fmt.Errorf("nil spec: %w", ErrInvalidSpec)
	}
	if s.Protocol == nil {
		return fmt.Errorf("%s: no protocol hooks: %w", s.Name, ErrInvalidSpec)
	}

	if len(s.DataBitLen) == 0 || len(s.DataBitLen) > maxDataBitLen {
		return fmt.Errorf("%s: %d frame lengths, want 1..%d: %w", s.Name, len(s.DataBitLen), maxDataBitLen, ErrInvalidSpec)
	}
	for _, l := range s.DataBitLen {
		if l == 0 {
			return fmt.Errorf("%s: zero frame length: %w", s.Name, ErrInvalidSpec)
		}
		if l > s.DataBitLen[0] {
			return fmt.Errorf("%s: frame length %d exceeds first length %d: %w", s.Name, l, s.DataBitLen[0], ErrInvalidSpec)
		}
	}

	t := &s.Timings
	if (t.PreambleMark == 0) != (t.PreambleSpace == 0) {
		return fmt.Errorf("%s: incomplete preamble: %w", s.Name, ErrInvalidSpec)
	}

	switch s.Coding {
	case PDWM:
		markInfo := t.Bit1Mark != t.Bit0Mark
		spaceInfo := t.Bit1Space != t.Bit0Space
		if markInfo == spaceInfo {
			return fmt.Errorf("%s: exactly one of mark or space must carry the bit: %w", s.Name, ErrInvalidSpec)
		}
	case Manchester:
		if t.Bit1Mark == 0 {
			return fmt.Errorf("%s: zero manchester half cell: %w", s.Name, ErrInvalidSpec)
		}
	default:
		return fmt.Errorf("%s: %v: %w", s.Name, s.Coding, ErrInvalidSpec)
	}

	return nil
}

// MaxBits returns the longest frame length.
func (s *Spec) MaxBits() int {
	return int(s.DataBitLen[0])
}

// IsLength reports whether n is one of the frame lengths.
func (s *Spec) IsLength(n int) bool {
	for _, l := range s.DataBitLen {
		if int(l) == n {
			return true
		}
	}
	return false
}

func (s *Spec) hasPreamble() bool {
	return s.Timings.PreambleMark != 0
}
