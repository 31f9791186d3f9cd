package irda

import "fmt"

const (
	// silence is the encoding state sending the gap before a frame.
	silence encoderState = iota
	// preamble is the encoding state sending the preamble mark and space.
	preamble
	// encodeBits is the encoding state sending the frame bits.
	encodeBits
	// encodeRepeat is the encoding state sending repeat frames.
	encodeRepeat
)

// encoderState represents the state of the encoding process.
type encoderState int

// Encoder produces the timings of one protocol message.
type Encoder struct {
	spec   *Spec
	repeat RepeatEncoder
	framer FrameRepeater
	packer SequencePacker

	state encoderState
	// bits holds the packed frame.
	bits *Bits
	// cursor is the index of the bit being encoded.
	cursor int
	// secondHalf is set once the first half of the current bit was sent.
	secondHalf bool
	// preambleSpace is set once the preamble mark was sent.
	preambleSpace bool

	// timings counts every timing sent since Reset.
	timings int
	// elapsed is the duration of the current frame without its leading gap.
	elapsed uint32

	repeatState RepeatState
	// frames counts the frames sent since Reset, used by a FrameRepeater.
	frames    int
	frameTime uint32
	// seq counts the messages packed by this encoder.
	seq uint32
}

// NewEncoder returns an encoder for spec. Reset must be called before Encode.
func NewEncoder(spec *Spec) (*Encoder, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	e := &Encoder{
		spec: spec,
		bits: NewBits(spec.MaxBits()),
	}
	e.repeat, _ = spec.Protocol.(RepeatEncoder)
	e.framer, _ = spec.Protocol.(FrameRepeater)
	e.packer, _ = spec.Protocol.(SequencePacker)
	return e, nil
}

// Spec returns the specification the encoder was built from.
func (e *Encoder) Spec() *Spec { return e.spec }

// Reset packs msg and restarts the encoding with the silence gap.
func (e *Encoder) Reset(msg Message) error {
	e.bits.Reset()
	e.state = silence
	e.cursor = 0
	e.secondHalf = false
	e.preambleSpace = false
	e.timings = 0
	e.elapsed = 0
	e.repeatState = RepeatState{}
	e.frames = 0
	e.frameTime = 0

	if err := e.packMessage(msg); err != nil {
		e.bits.Reset()
		return err
	}
	e.seq++
	return nil
}

func (e *Encoder) packMessage(msg Message) (err error) {
	// a protocol packing more bits than its longest frame panics in Push
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: packing %v: %v: %w", e.spec.Name, msg, r, ErrInvalidMessage)
		}
	}()

	if e.packer != nil {
		err = e.packer.PackSequence(msg, e.seq, e.bits)
	} else {
		err = e.spec.Protocol.Pack(msg, e.bits)
	}
	if err != nil {
		return err
	}
	if !e.spec.IsLength(e.bits.Len()) {
		return fmt.Errorf("%s: %d bits packed: %w", e.spec.Name, e.bits.Len(), ErrInvalidMessage)
	}
	if e.spec.Coding == Manchester && e.spec.ManchesterStartFromSpace && e.bits.Bit(0) {
		return fmt.Errorf("%s: first bit must be 0: %w", e.spec.Name, ErrInvalidMessage)
	}
	return nil
}

// Timings returns the number of timings sent since Reset.
func (e *Encoder) Timings() int { return e.timings }

// Elapsed returns the duration of the current frame without its leading gap.
func (e *Encoder) Elapsed() uint32 { return e.elapsed }

// Encode returns the next timing to send. Exactly one timing is produced per
// call. StatusDone marks the last timing of a frame or repeat frame.
// Encoding an empty (not Reset) encoder panics.
func (e *Encoder) Encode() (duration uint32, level bool, status Status) {
	if e.bits.Len() == 0 {
		panic("irda: encode without message")
	}

	t := &e.spec.Timings
	e.timings++

	switch e.state {
	case silence:
		gap := t.SilenceTime
		if e.framer != nil && e.frames > 0 {
			gap = e.framer.RepeatGap(RepeatState{Count: e.frames - 1, FrameTime: e.frameTime})
		}

		e.elapsed = 0
		e.cursor = 0
		e.secondHalf = false
		if e.spec.hasPreamble() {
			e.state = preamble
		} else {
			e.state = encodeBits
		}
		return gap, false, StatusOk

	case preamble:
		if !e.preambleSpace {
			e.preambleSpace = true
			e.elapsed += t.PreambleMark
			return t.PreambleMark, true, StatusOk
		}
		e.preambleSpace = false
		e.state = encodeBits
		e.elapsed += t.PreambleSpace
		return t.PreambleSpace, false, StatusOk

	case encodeBits:
		switch e.spec.Coding {
		case Manchester:
			duration, level, status = e.encodeManchester()
		default:
			duration, level, status = e.encodePDWM()
		}
		e.elapsed += duration

		if status == StatusDone {
			if e.repeat != nil {
				e.repeatState = RepeatState{FrameTime: e.elapsed}
				e.elapsed = 0
				e.state = encodeRepeat
			} else {
				e.frames++
				e.frameTime = e.elapsed
				e.state = silence
			}
		}
		return duration, level, status

	default:
		duration, level, status = e.repeat.EncodeRepeat(e.repeatState)
		if e.repeatState.Step > 0 {
			e.elapsed += duration
		}

		if status == StatusDone {
			e.repeatState.Count++
			e.repeatState.Step = 0
			e.repeatState.FrameTime = e.elapsed
			e.elapsed = 0
		} else {
			e.repeatState.Step++
		}
		return duration, level, status
	}
}
