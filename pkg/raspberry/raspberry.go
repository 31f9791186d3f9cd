// Package raspberry connects the IR receiver and the IR LED to the gpio ports
package raspberry

import (
	"fmt"
)

var (
	ErrInvalidParam = fmt.Errorf("invalid parameters")
	ErrNotSupported = fmt.Errorf("gpio not supported on this platform")
)

// Terminators of an input line.
const (
	PullUp   = "pullup"
	PullDown = "pulldown"
	None     = "none"
)

// events is the capacity of channel Line.C. A NEC frame with a repeat has about 75 edges.
const events = 1024
