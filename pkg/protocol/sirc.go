package protocol

import (
	"irdad/pkg/irda"
)

// Sony SIRC is a pulse width protocol in three lengths: 12, 15 and 20 bits.
// https://www.sbprojects.net/knowledge/ir/sirc.php

const (
	sircPreambleMark  = 2400
	sircPreambleSpace = 600
	sircBit1Mark      = 1200
	sircBit0Mark      = 600
	sircBitSpace      = 600
	sircSilence       = 10000
	sircMinSplit      = sircSilence - 1000
	sircFrequency     = 40000
	// sircRepeatPeriod is the time from the start of one frame to the start of its copy.
	sircRepeatPeriod = 45000

	sircCommandBits = 7
)

// SIRC is the SIRC family: SIRC (12 bit), SIRC15 and SIRC20.
var SIRC = &irda.Spec{
	Name: "SIRC",
	Timings: irda.Timings{
		PreambleMark:      sircPreambleMark,
		PreambleSpace:     sircPreambleSpace,
		Bit1Mark:          sircBit1Mark,
		Bit1Space:         sircBitSpace,
		Bit0Mark:          sircBit0Mark,
		Bit0Space:         sircBitSpace,
		PreambleTolerance: 200,
		BitTolerance:      120,
		SilenceTime:       sircSilence,
		MinSplitTime:      sircMinSplit,
	},
	Coding:     irda.PDWM,
	DataBitLen: []uint8{20, 15, 12},
	Frequency:  sircFrequency,
	DutyCycle:  defaultDutyCycle,
	Protocol:   sirc{},
}

type sirc struct{}

// sircAddressBits maps the message protocol name to the address length.
var sircAddressBits = map[string]int{
	"SIRC":   5,
	"SIRC15": 8,
	"SIRC20": 13,
}

func (sirc) Names() []string {
	return []string{"SIRC", "SIRC15", "SIRC20"}
}

// Interpret decodes command (7) and address (5, 8 or 13), LSB first.
func (sirc) Interpret(bits *irda.Bits) (irda.Message, bool) {
	var name string
	switch bits.Len() {
	case 12:
		name = "SIRC"
	case 15:
		name = "SIRC15"
	case 20:
		name = "SIRC20"
	default:
		return irda.Message{}, false
	}

	return irda.Message{
		Protocol: name,
		Command:  uint32(bits.Uint(0, sircCommandBits)),
		Address:  uint32(bits.Uint(sircCommandBits, bits.Len()-sircCommandBits)),
	}, true
}

func (sirc) Pack(msg irda.Message, bits *irda.Bits) error {
	n, ok := sircAddressBits[msg.Protocol]
	if !ok {
		return invalid(msg, "no SIRC protocol")
	}
	if msg.Command >= 1<<sircCommandBits {
		return invalid(msg, "command %#x exceeds %d bits", msg.Command, sircCommandBits)
	}
	if msg.Address >= 1<<uint(n) {
		return invalid(msg, "address %#x exceeds %d bits", msg.Address, n)
	}

	bits.PushUint(uint64(msg.Command), sircCommandBits)
	bits.PushUint(uint64(msg.Address), n)
	return nil
}

// RepeatGap starts every copy of the frame sircRepeatPeriod after the previous one.
func (sirc) RepeatGap(r irda.RepeatState) uint32 {
	if r.FrameTime+sircSilence < sircRepeatPeriod {
		return sircRepeatPeriod - r.FrameTime
	}
	return sircSilence
}
