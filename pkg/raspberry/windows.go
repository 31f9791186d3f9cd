//+build !linux

package raspberry

import (
	"irdad/pkg/port"
)

// Chip is not supported on this platform.
type Chip struct{}

// Line is not supported on this platform, channel C never sends.
type Line struct {
	C chan port.Event
}

func Open(string) (*Chip, error) {
	return nil, ErrNotSupported
}

func (c *Chip) NewLine(int, string) (*Line, error) {
	return nil, ErrNotSupported
}

func (c *Chip) Close() error {
	return nil
}

func (l *Line) Dropped() uint64 {
	return 0
}

func (l *Line) Close() error {
	return nil
}

func OpenOutput(int, bool) (*Output, error) {
	return nil, ErrNotSupported
}
