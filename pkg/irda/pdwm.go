package irda

// Pulse distance / pulse width modulation.
// Either the mark or the space of a bit carries its value, the other half
// has a fixed duration. https://www.sbprojects.net/knowledge/ir/nec.php

// decodePDWM classifies one sample of a PDWM bit.
func (d *Decoder) decodePDWM(s Sample) Status {
	t := &d.spec.Timings
	markInfo := t.Bit1Mark != t.Bit0Mark

	bit1, bit0 := t.Bit1Space, t.Bit0Space
	if s.Level {
		bit1, bit0 = t.Bit1Mark, t.Bit0Mark
	}

	if s.Level != markInfo {
		// no information in this half, bit1 and bit0 are equal
		if !Matches(s.Duration, bit1, t.BitTolerance) {
			return StatusError
		}
		return StatusOk
	}

	if d.bits.Full() {
		return StatusError
	}

	switch {
	case Matches(s.Duration, bit1, t.BitTolerance):
		d.bits.Push(true)
	case Matches(s.Duration, bit0, t.BitTolerance):
		d.bits.Push(false)
	default:
		return StatusError
	}
	return StatusOk
}

// encodePDWM returns the next timing of the frame bits: the mark and then
// the space of every bit. Halves of zero duration are skipped.
func (e *Encoder) encodePDWM() (uint32, bool, Status) {
	t := &e.spec.Timings
	n := e.bits.Len()
	pulseWidth := t.Bit1Space == t.Bit0Space

	for {
		if e.cursor == n {
			// pulse distance: the stop mark closes the last space
			return t.Bit1Mark, true, StatusDone
		}

		bit := e.bits.Bit(e.cursor)

		if !e.secondHalf {
			e.secondHalf = true
			duration := t.Bit0Mark
			if bit {
				duration = t.Bit1Mark
			}
			if duration == 0 {
				continue
			}
			if pulseWidth && e.cursor == n-1 {
				// the space of the last bit merges into the silence
				e.cursor++
				e.secondHalf = false
				return duration, true, StatusDone
			}
			return duration, true, StatusOk
		}

		e.secondHalf = false
		e.cursor++
		duration := t.Bit0Space
		if bit {
			duration = t.Bit1Space
		}
		if duration == 0 {
			continue
		}
		if e.cursor == n && t.Bit1Mark == 0 {
			return duration, false, StatusDone
		}
		return duration, false, StatusOk
	}
}
