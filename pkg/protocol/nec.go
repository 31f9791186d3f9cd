package protocol

import (
	"irdad/pkg/irda"
)

// NEC protocol references
// https://www.sbprojects.net/knowledge/ir/nec.php
// https://techdocs.altium.com/display/FPGA/NEC+Infrared+Transmission+Protocol

const (
	necPreambleMark  = 9000
	necPreambleSpace = 4500
	necRepeatSpace   = 2250
	necBitMark       = 560
	necBit1Space     = 1690
	necBit0Space     = 560
	necSilence       = 110000
	necMinSplit      = 4000
	// necRepeatPeriod is the time between the start of two frames while a key is held.
	necRepeatPeriod   = 110000
	necRepeatPauseMax = 150000

	// 42 bit frames carry 13 address bits
	nec42AddressMask = 1<<13 - 1
)

// NEC is the NEC family: NEC and NECext (32 bit), NEC42 and NEC42ext (42 bit).
var NEC = &irda.Spec{
	Name: "NEC",
	Timings: irda.Timings{
		PreambleMark:      necPreambleMark,
		PreambleSpace:     necPreambleSpace,
		Bit1Mark:          necBitMark,
		Bit1Space:         necBit1Space,
		Bit0Mark:          necBitMark,
		Bit0Space:         necBit0Space,
		PreambleTolerance: 200,
		BitTolerance:      120,
		SilenceTime:       necSilence,
		MinSplitTime:      necMinSplit,
	},
	Coding:     irda.PDWM,
	DataBitLen: []uint8{42, 32},
	Frequency:  defaultFrequency,
	DutyCycle:  defaultDutyCycle,
	Protocol: nec{
		repeat: repeatFrame{
			period:     necRepeatPeriod,
			gap:        4 * necMinSplit,
			pauseMin:   necMinSplit,
			pauseMax:   necRepeatPauseMax,
			timings:    []uint32{necPreambleMark, necRepeatSpace, necBitMark},
			tolerances: []uint32{200, 200, 120},
		},
	},
}

type nec struct {
	repeat repeatFrame
}

func (nec) Names() []string {
	return []string{"NEC", "NECext", "NEC42", "NEC42ext"}
}

// Interpret decodes the frame
//  32 bit: address (8), inverted address (8), command (8), inverted command (8)
//  42 bit: address (13), inverted address (13), command (8), inverted command (8)
// An address not followed by its inverse is an extended (16 or 26 bit) address.
// All fields are sent LSB first.
func (nec) Interpret(bits *irda.Bits) (irda.Message, bool) {
	var msg irda.Message

	switch bits.Len() {
	case 32:
		addrLow, addrHigh := bits.Byte(0), bits.Byte(1)
		cmd, invCmd := bits.Byte(2), bits.Byte(3)
		if cmd != ^invCmd {
			return msg, false
		}

		msg.Command = uint32(cmd)
		if addrHigh == ^addrLow {
			msg.Protocol = "NEC"
			msg.Address = uint32(addrLow)
		} else {
			msg.Protocol = "NECext"
			msg.Address = uint32(addrHigh)<<8 | uint32(addrLow)
		}

	case 42:
		addr, invAddr := bits.Uint(0, 13), bits.Uint(13, 13)
		cmd, invCmd := bits.Uint(26, 8), bits.Uint(34, 8)
		if cmd != ^invCmd&0xFF {
			return msg, false
		}

		msg.Command = uint32(cmd)
		if addr == ^invAddr&nec42AddressMask {
			msg.Protocol = "NEC42"
			msg.Address = uint32(addr)
		} else {
			msg.Protocol = "NEC42ext"
			msg.Address = uint32(bits.Uint(0, 26))
		}

	default:
		return msg, false
	}

	return msg, true
}

// Pack encodes msg, the frame length depends on the message protocol name.
func (nec) Pack(msg irda.Message, bits *irda.Bits) error {
	if msg.Command > 0xFF {
		return invalid(msg, "command %#x exceeds 8 bits", msg.Command)
	}

	switch msg.Protocol {
	case "NEC":
		if msg.Address > 0xFF {
			return invalid(msg, "address %#x exceeds 8 bits", msg.Address)
		}
		bits.PushUint(uint64(msg.Address), 8)
		bits.PushUint(uint64(^msg.Address), 8)

	case "NECext":
		if msg.Address > 0xFFFF {
			return invalid(msg, "address %#x exceeds 16 bits", msg.Address)
		}
		if byte(msg.Address>>8) == ^byte(msg.Address) {
			// indistinguishable from an 8 bit address with its inverse
			return invalid(msg, "address %#x is a NEC address", msg.Address)
		}
		bits.PushUint(uint64(msg.Address), 16)

	case "NEC42":
		if msg.Address > nec42AddressMask {
			return invalid(msg, "address %#x exceeds 13 bits", msg.Address)
		}
		bits.PushUint(uint64(msg.Address), 13)
		bits.PushUint(uint64(^msg.Address), 13)

	case "NEC42ext":
		if msg.Address > 1<<26-1 {
			return invalid(msg, "address %#x exceeds 26 bits", msg.Address)
		}
		if msg.Address>>13 == ^msg.Address&nec42AddressMask {
			return invalid(msg, "address %#x is a NEC42 address", msg.Address)
		}
		bits.PushUint(uint64(msg.Address), 26)

	default:
		return invalid(msg, "no NEC protocol")
	}

	bits.PushUint(uint64(msg.Command), 8)
	bits.PushUint(uint64(^msg.Command), 8)
	return nil
}

// DecodeRepeat detects the repeat frame: pause, 9 ms mark, 2.25 ms space and the stop mark.
func (p nec) DecodeRepeat(q *irda.Samples) irda.Status {
	return p.repeat.decode(q)
}

// EncodeRepeat sends the repeat frame every 110 ms.
func (p nec) EncodeRepeat(s irda.RepeatState) (uint32, bool, irda.Status) {
	return p.repeat.encode(s)
}
