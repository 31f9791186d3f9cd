package protocol

import (
	"irdad/pkg/irda"
)

// Samsung32 is a NEC variant with a 4.5 ms preamble mark and a repeated address byte.
// https://www.techdesign.be/projects/011/011_waves.htm

const (
	samsungPreambleMark  = 4500
	samsungPreambleSpace = 4500
	samsungBitMark       = 550
	samsungBit1Space     = 1650
	samsungBit0Space     = 550
	samsungSilence       = 145000
	samsungMinSplit      = 5000
	// the pause before the first and before every further repeat frame
	samsungRepeatPause1 = 46000
	samsungRepeatPause2 = 97000
	// the silence before a frame exceeds samsungRepeatPauseMax, otherwise a
	// frame starting with a 1 bit looks like a repeat frame
	samsungRepeatPauseMin = 30000
	samsungRepeatPauseMax = 140000
)

// Samsung32 is the 32 bit Samsung protocol.
var Samsung32 = &irda.Spec{
	Name: "Samsung32",
	Timings: irda.Timings{
		PreambleMark:      samsungPreambleMark,
		PreambleSpace:     samsungPreambleSpace,
		Bit1Mark:          samsungBitMark,
		Bit1Space:         samsungBit1Space,
		Bit0Mark:          samsungBitMark,
		Bit0Space:         samsungBit0Space,
		PreambleTolerance: 200,
		BitTolerance:      120,
		SilenceTime:       samsungSilence,
		MinSplitTime:      samsungMinSplit,
	},
	Coding:     irda.PDWM,
	DataBitLen: []uint8{32},
	Frequency:  defaultFrequency,
	DutyCycle:  defaultDutyCycle,
	Protocol: samsung{
		repeat: repeatFrame{
			pauses:   []uint32{samsungRepeatPause1, samsungRepeatPause2},
			pauseMin: samsungRepeatPauseMin,
			pauseMax: samsungRepeatPauseMax,
			// preamble, a single 1 bit and the stop mark
			timings:    []uint32{samsungPreambleMark, samsungPreambleSpace, samsungBitMark, samsungBit1Space, samsungBitMark},
			tolerances: []uint32{200, 200, 120, 120, 120},
		},
	},
}

type samsung struct {
	repeat repeatFrame
}

func (samsung) Names() []string {
	return []string{"Samsung32"}
}

// Interpret decodes address (8), address (8), command (8), inverted command (8).
func (samsung) Interpret(bits *irda.Bits) (irda.Message, bool) {
	if bits.Len() != 32 {
		return irda.Message{}, false
	}

	addr, addr2 := bits.Byte(0), bits.Byte(1)
	cmd, invCmd := bits.Byte(2), bits.Byte(3)
	if addr != addr2 || cmd != ^invCmd {
		return irda.Message{}, false
	}

	return irda.Message{
		Protocol: "Samsung32",
		Address:  uint32(addr),
		Command:  uint32(cmd),
	}, true
}

func (samsung) Pack(msg irda.Message, bits *irda.Bits) error {
	if msg.Address > 0xFF {
		return invalid(msg, "address %#x exceeds 8 bits", msg.Address)
	}
	if msg.Command > 0xFF {
		return invalid(msg, "command %#x exceeds 8 bits", msg.Command)
	}

	bits.PushUint(uint64(msg.Address), 8)
	bits.PushUint(uint64(msg.Address), 8)
	bits.PushUint(uint64(msg.Command), 8)
	bits.PushUint(uint64(^msg.Command), 8)
	return nil
}

func (p samsung) DecodeRepeat(q *irda.Samples) irda.Status {
	return p.repeat.decode(q)
}

func (p samsung) EncodeRepeat(s irda.RepeatState) (uint32, bool, irda.Status) {
	return p.repeat.encode(s)
}
