package irda

const (
	// awaitPreamble is the decoding state to search the frame start.
	awaitPreamble decoderState = iota
	// decodeBits is the decoding state to accumulate data bits.
	decodeBits
	// processRepeat is the decoding state after a frame, waiting for repeat frames.
	processRepeat
)

// decoderState represents the state of the decoding process.
type decoderState int

// Stats counts the timings a decoder rejected.
type Stats struct {
	// TimingMismatches counts samples which matched no expected timing.
	TimingMismatches int
	// FrameRejections counts frames of a valid length the protocol refused.
	FrameRejections int
	// Resyncs counts restarts of the frame search.
	Resyncs int
}

// Decoder decodes the timings of one protocol.
// A Decoder must be fed by a single goroutine.
type Decoder struct {
	spec   *Spec
	repeat RepeatDecoder

	// state contains the current decoding state.
	state decoderState
	// bits accumulates the data bits of the current frame.
	bits *Bits
	// samples holds the samples not yet consumed by the state handlers.
	samples Samples
	// level is the level of the last received sample.
	level bool
	// midCell is set while a manchester bit cell is half received.
	midCell bool
	// skipSplit lets the oldest sample pass the split check once.
	skipSplit bool

	message Message
	stats   Stats
}

// NewDecoder returns a decoder for spec.
func NewDecoder(spec *Spec) (*Decoder, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	d := &Decoder{
		spec: spec,
		bits: NewBits(spec.MaxBits()),
	}
	d.repeat, _ = spec.Protocol.(RepeatDecoder)
	return d, nil
}

// Spec returns the specification the decoder was built from.
func (d *Decoder) Spec() *Spec { return d.spec }

// Stats returns the rejection counters.
func (d *Decoder) Stats() Stats { return d.stats }

// Reset returns the decoder to the search of a frame start.
func (d *Decoder) Reset() {
	d.resync()
	d.samples.reset()
	d.skipSplit = false
}

// Decode feeds one timing. It returns a message if the timing completed a
// frame or a repeat frame.
func (d *Decoder) Decode(level bool, duration uint32) (Message, bool) {
	// two samples of the same level: the source restarted, drop everything
	if level == d.level {
		d.Reset()
	}
	d.level = level
	d.samples.push(Sample{Level: level, Duration: duration})

	var msg Message
	var ok bool

	for {
		switch d.state {
		case awaitPreamble:
			if d.checkPreamble() {
				d.bits.Reset()
				d.midCell = false
				d.state = decodeBits
				continue
			}

		case decodeBits:
			switch d.decodeBits() {
			case StatusReady:
				m, accepted, retry := d.finish()
				if accepted {
					msg, ok = m, true
				}
				if retry {
					continue
				}
			case StatusError:
				d.stats.TimingMismatches++
				d.resync()
				continue
			}

		case processRepeat:
			switch d.repeat.DecodeRepeat(&d.samples) {
			case StatusReady:
				d.message.Repeat = true
				msg, ok = d.message, true
			case StatusError:
				d.resync()
				continue
			}
		}

		return msg, ok
	}
}

// CheckReady interprets the current frame if its bit count is a valid frame
// length. It is called when the line went idle without a split space.
func (d *Decoder) CheckReady() (Message, bool) {
	if d.state != decodeBits || !d.spec.IsLength(d.bits.Len()) {
		return Message{}, false
	}

	msg, ok := d.spec.Protocol.Interpret(d.bits)
	if !ok {
		d.stats.FrameRejections++
		return Message{}, false
	}
	d.accept(msg)
	return msg, true
}

// finish handles a ready frame. retry reports whether the state handlers
// must run again on the buffered samples.
func (d *Decoder) finish() (msg Message, accepted, retry bool) {
	n := d.bits.Len()
	if !d.spec.IsLength(n) {
		d.stats.TimingMismatches++
		d.resync()
		return Message{}, false, true
	}

	msg, accepted = d.spec.Protocol.Interpret(d.bits)
	if accepted {
		d.accept(msg)
		return msg, true, false
	}

	d.stats.FrameRejections++
	if n == d.spec.MaxBits() {
		d.resync()
		return Message{}, false, true
	}

	// a shorter variant matched by chance, the longer one may still come
	d.skipSplit = true
	return Message{}, false, true
}

func (d *Decoder) accept(msg Message) {
	msg.Repeat = false
	d.message = msg
	d.bits.Reset()
	if d.repeat != nil {
		d.state = processRepeat
	} else {
		d.state = awaitPreamble
	}
}

// resync restarts the frame search. Without a preamble every sample may
// start a frame, so only the oldest one is dropped.
func (d *Decoder) resync() {
	if d.state != awaitPreamble || d.bits.Len() > 0 {
		d.stats.Resyncs++
	}
	d.state = awaitPreamble
	d.bits.Reset()
	d.midCell = false

	if !d.spec.hasPreamble() && d.samples.Len() > 0 {
		d.samples.Consume(1)
		d.skipSplit = false
	}
}

// checkPreamble aligns the buffer to a Mark and searches the preamble pair.
func (d *Decoder) checkPreamble() bool {
	if d.samples.Len() == 0 {
		return false
	}

	if !d.samples.At(0).Level {
		d.samples.Consume(1)
		d.skipSplit = false
	}

	if !d.spec.hasPreamble() {
		return true
	}

	t := &d.spec.Timings
	for d.samples.Len() >= 2 {
		mark, space := d.samples.At(0), d.samples.At(1)
		d.samples.Consume(2)
		d.skipSplit = false

		if Matches(mark.Duration, t.PreambleMark, t.PreambleTolerance) &&
			Matches(space.Duration, t.PreambleSpace, t.PreambleTolerance) {
			return true
		}
	}

	return false
}

// decodeBits passes the buffered samples to the bit strategy.
func (d *Decoder) decodeBits() Status {
	t := &d.spec.Timings
	maxBits := d.spec.MaxBits()

	for d.samples.Len() > 0 {
		s := d.samples.At(0)

		if t.MinSplitTime != 0 && !s.Level && !d.skipSplit {
			if s.Duration > t.MinSplitTime {
				// long space: the frame ends if any of the lengths is reached
				if d.spec.IsLength(d.bits.Len()) {
					return StatusReady
				}
			} else if d.bits.Len() == maxBits {
				// short space after the longest frame: the signal is longer than expected
				return StatusError
			}
		}

		var status Status
		switch d.spec.Coding {
		case Manchester:
			status = d.decodeManchester(s)
		default:
			status = d.decodePDWM(s)
		}
		if status == StatusError {
			return status
		}

		d.samples.Consume(1)
		d.skipSplit = false

		if s.Level && t.MinSplitTime == 0 && d.bits.Len() == maxBits {
			return StatusReady
		}
	}

	return StatusOk
}
