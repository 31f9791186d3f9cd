package protocol

import (
	"irdad/pkg/irda"
)

// Philips RC5 is a manchester protocol with 14 bit frames:
// start bit (1), field bit (1 for RC5, inverted command bit 6 for RC5X),
// toggle bit, address (5) and command (6), MSB first.
// A 1 bit is a space followed by a mark.
// https://www.sbprojects.net/knowledge/ir/rc5.php

const (
	rc5HalfCell  = 888
	rc5Silence   = 27000
	rc5MinSplit  = 2700
	rc5Frequency = 36000
	rc5DutyCycle = 0.33

	rc5Bits = 14
)

// RC5 is the RC5 family: RC5 (commands 0..63) and RC5X (commands 64..127).
var RC5 = &irda.Spec{
	Name: "RC5",
	Timings: irda.Timings{
		Bit1Mark:          rc5HalfCell,
		Bit1Space:         rc5HalfCell,
		Bit0Mark:          rc5HalfCell,
		Bit0Space:         rc5HalfCell,
		PreambleTolerance: 200,
		BitTolerance:      120,
		SilenceTime:       rc5Silence,
		MinSplitTime:      rc5MinSplit,
	},
	Coding:                   irda.Manchester,
	ManchesterStartFromSpace: true,
	DataBitLen:               []uint8{rc5Bits},
	Frequency:                rc5Frequency,
	DutyCycle:                rc5DutyCycle,
	Protocol:                 rc5{},
}

type rc5 struct{}

func (rc5) Names() []string {
	return []string{"RC5", "RC5X"}
}

// Interpret decodes the frame. The codec stores the level of the first half
// cell, so every RC5 bit is inverted.
func (rc5) Interpret(bits *irda.Bits) (irda.Message, bool) {
	if bits.Len() != rc5Bits {
		return irda.Message{}, false
	}

	field := func(from, count int) uint32 {
		var v uint32
		for i := from; i < from+count; i++ {
			v <<= 1
			if !bits.Bit(i) {
				v |= 1
			}
		}
		return v
	}

	if field(0, 1) != 1 {
		return irda.Message{}, false
	}

	msg := irda.Message{
		Protocol: "RC5",
		Address:  field(3, 5),
		Command:  field(8, 6),
	}
	if field(1, 1) == 0 {
		msg.Protocol = "RC5X"
		msg.Command += 64
	}
	return msg, true
}

// Pack packs msg with the toggle bit cleared.
func (p rc5) Pack(msg irda.Message, bits *irda.Bits) error {
	return p.PackSequence(msg, 0, bits)
}

// PackSequence packs msg, the toggle bit flips with every message of an encoder.
func (rc5) PackSequence(msg irda.Message, seq uint32, bits *irda.Bits) error {
	if msg.Address > 0x1F {
		return invalid(msg, "address %#x exceeds 5 bits", msg.Address)
	}

	field := uint32(1)
	command := msg.Command
	switch msg.Protocol {
	case "RC5":
		if command > 0x3F {
			return invalid(msg, "command %#x exceeds 6 bits", command)
		}
	case "RC5X":
		if command < 64 || command > 0x7F {
			return invalid(msg, "command %#x not in 64..127", command)
		}
		field = 0
		command -= 64
	default:
		return invalid(msg, "no RC5 protocol")
	}

	toggle := seq & 1

	// MSB first, inverted
	push := func(v uint32, count int) {
		for i := count - 1; i >= 0; i-- {
			bits.Push(v>>uint(i)&1 == 0)
		}
	}
	push(1, 1)
	push(field, 1)
	push(toggle, 1)
	push(msg.Address, 5)
	push(command, 6)
	return nil
}
