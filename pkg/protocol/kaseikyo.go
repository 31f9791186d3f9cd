package protocol

import (
	"irdad/pkg/irda"
)

// Kaseikyo (Panasonic, Denon, Sharp, JVC, Mitsubishi) is a 48 bit pulse distance protocol:
// vendor id (16), vendor parity (4), genre1 (4), genre2 (4), data (10), id (2), parity (8), LSB first.
// Keys held down resend the whole frame.
// https://github.com/Arduino-IRremote/Arduino-IRremote/blob/master/src/ir_Kaseikyo.hpp

const (
	kaseikyoUnit          = 432
	kaseikyoPreambleMark  = 8 * kaseikyoUnit
	kaseikyoPreambleSpace = 4 * kaseikyoUnit
	kaseikyoBit1Space     = 3 * kaseikyoUnit
	kaseikyoRepeatPeriod  = 130000
	kaseikyoSilence       = kaseikyoRepeatPeriod
	kaseikyoMinSplit      = 4000

	kaseikyoBits         = 48
	kaseikyoAddressMask  = 1<<26 - 1
	kaseikyoCommandLimit = 1 << 10
)

// Kaseikyo is the 48 bit Kaseikyo protocol.
//  Address: id (bits 24..25), vendor id (bits 8..23), genre1 (bits 4..7), genre2 (bits 0..3)
//  Command: data (10 bits)
var Kaseikyo = &irda.Spec{
	Name: "Kaseikyo",
	Timings: irda.Timings{
		PreambleMark:      kaseikyoPreambleMark,
		PreambleSpace:     kaseikyoPreambleSpace,
		Bit1Mark:          kaseikyoUnit,
		Bit1Space:         kaseikyoBit1Space,
		Bit0Mark:          kaseikyoUnit,
		Bit0Space:         kaseikyoUnit,
		PreambleTolerance: 200,
		BitTolerance:      120,
		SilenceTime:       kaseikyoSilence,
		MinSplitTime:      kaseikyoMinSplit,
	},
	Coding:     irda.PDWM,
	DataBitLen: []uint8{kaseikyoBits},
	Frequency:  defaultFrequency,
	DutyCycle:  defaultDutyCycle,
	Protocol:   kaseikyo{},
}

type kaseikyo struct{}

func (kaseikyo) Names() []string {
	return []string{"Kaseikyo"}
}

// vendorParity folds the vendor id bytes into 4 bits.
func vendorParity(lo, hi byte) byte {
	p := lo ^ hi
	return (p & 0xF) ^ (p >> 4)
}

func (kaseikyo) Interpret(bits *irda.Bits) (irda.Message, bool) {
	if bits.Len() != kaseikyoBits {
		return irda.Message{}, false
	}

	var b [6]byte
	for i := range b {
		b[i] = bits.Byte(i)
	}

	if b[2]&0xF != vendorParity(b[0], b[1]) || b[5] != b[2]^b[3]^b[4] {
		return irda.Message{}, false
	}

	vendor := uint32(b[1])<<8 | uint32(b[0])
	genre1 := uint32(b[2] >> 4)
	genre2 := uint32(b[3] & 0xF)
	id := uint32(b[4] >> 6)
	return irda.Message{
		Protocol: "Kaseikyo",
		Address:  id<<24 | vendor<<8 | genre1<<4 | genre2,
		Command:  uint32(b[3]>>4) | uint32(b[4]&0x3F)<<4,
	}, true
}

func (kaseikyo) Pack(msg irda.Message, bits *irda.Bits) error {
	if msg.Address > kaseikyoAddressMask {
		return invalid(msg, "address %#x exceeds 26 bits", msg.Address)
	}
	if msg.Command >= kaseikyoCommandLimit {
		return invalid(msg, "command %#x exceeds 10 bits", msg.Command)
	}

	var b [6]byte
	b[0] = byte(msg.Address >> 8)
	b[1] = byte(msg.Address >> 16)
	b[2] = vendorParity(b[0], b[1]) | byte(msg.Address>>4&0xF)<<4
	b[3] = byte(msg.Address&0xF) | byte(msg.Command&0xF)<<4
	b[4] = byte(msg.Address>>24&0x3)<<6 | byte(msg.Command>>4)
	b[5] = b[2] ^ b[3] ^ b[4]

	for _, v := range b {
		bits.PushUint(uint64(v), 8)
	}
	return nil
}

// RepeatGap starts every copy of the frame kaseikyoRepeatPeriod after the previous one.
func (kaseikyo) RepeatGap(r irda.RepeatState) uint32 {
	if r.FrameTime+kaseikyoMinSplit < kaseikyoRepeatPeriod {
		return kaseikyoRepeatPeriod - r.FrameTime
	}
	return kaseikyoMinSplit
}
