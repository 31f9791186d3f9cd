package irda

// Manchester (biphase) code: every bit cell has a transition in its middle,
// the value of a bit is the level of its first half cell.
// https://en.wikipedia.org/wiki/Manchester_code

// decodeManchester classifies one sample as a single (half cell) or double
// (full cell) period:
//   - at a cell boundary a single starts a cell, a double is invalid
//   - in the middle of a cell a single ends it, a double ends it and starts the next one
// A bit is accumulated whenever a cell is started.
func (d *Decoder) decodeManchester(s Sample) Status {
	t := &d.spec.Timings

	single := Matches(s.Duration, t.Bit1Mark, t.BitTolerance)
	double := Matches(s.Duration, 2*t.Bit1Mark, t.BitTolerance)
	if !single && !double {
		return StatusError
	}

	if d.spec.ManchesterStartFromSpace && d.bits.Len() == 0 {
		// the first half cell was the idle space, fake it
		d.midCell = true
		d.bits.Push(false)
	}

	if !d.midCell {
		if double {
			return StatusError
		}
		d.midCell = true
	} else if single {
		d.midCell = false
	}

	if d.midCell {
		if d.bits.Full() {
			return StatusError
		}
		d.bits.Push(s.Level)
	}

	return StatusOk
}

// encodeManchester returns the next half cell of the frame bits.
func (e *Encoder) encodeManchester() (uint32, bool, Status) {
	t := &e.spec.Timings
	n := e.bits.Len()

	if e.spec.ManchesterStartFromSpace && e.cursor == 0 && !e.secondHalf {
		// the leading space half merges into the silence
		e.secondHalf = true
	}

	bit := e.bits.Bit(e.cursor)

	if !e.secondHalf {
		e.secondHalf = true
		if e.cursor == n-1 && bit {
			// the trailing space half is the idle line, nothing to send
			e.cursor++
			e.secondHalf = false
			return t.Bit1Mark, true, StatusDone
		}
		return t.Bit1Mark, bit, StatusOk
	}

	e.secondHalf = false
	e.cursor++
	if e.cursor == n {
		return t.Bit1Mark, !bit, StatusDone
	}
	return t.Bit1Mark, !bit, StatusOk
}
