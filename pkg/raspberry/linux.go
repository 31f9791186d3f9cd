//+build linux

package raspberry

import (
	"sync/atomic"

	"github.com/warthog618/gpio"
	"github.com/warthog618/gpiod"
	"github.com/womat/debug"

	"irdad/pkg/port"
)

// Chip represents a single GPIO chip that controls a set of lines.
type Chip struct {
	gpiodChip *gpiod.Chip
}

// Line represents a single requested line.
type Line struct {
	gpiodLine *gpiod.Line
	// dropped counts the events lost because channel C was full.
	dropped uint64
	// send edge changes to channel
	C chan port.Event
}

// Open opens a GPIO character device, e.g. gpiochip0.
func Open(name string) (*Chip, error) {
	c, err := gpiod.NewChip(name)
	if err != nil {
		return nil, err
	}
	return &Chip{gpiodChip: c}, nil
}

// NewLine requests control of a single line on a chip.
//   If granted, control is maintained until the Line is closed.
//   Every edge of the line is sent with its kernel timestamp to channel C.
func (c *Chip) NewLine(offset int, terminator string) (*Line, error) {
	var err error

	line := &Line{
		C: make(chan port.Event, events)}

	opts := []gpiod.LineReqOption{gpiod.WithEventHandler(line.handle), gpiod.WithBothEdges, gpiod.AsInput}
	switch terminator {
	case PullUp:
		opts = append(opts, gpiod.WithPullUp)
	case PullDown:
		opts = append(opts, gpiod.WithPullDown)
	case None:
	default:
		return nil, ErrInvalidParam
	}

	if line.gpiodLine, err = c.gpiodChip.RequestLine(offset, opts...); err != nil {
		return nil, err
	}
	return line, nil
}

// handle sends evt to channel C. It is called from the gpiod event goroutine and must not block.
func (l *Line) handle(evt gpiod.LineEvent) {
	e := port.Event{Timestamp: evt.Timestamp}
	switch evt.Type {
	case gpiod.LineEventRisingEdge:
		e.Type = port.RisingEdge
	case gpiod.LineEventFallingEdge:
		e.Type = port.FallingEdge
	default:
		debug.ErrorLog.Printf("invalid line event: %v", evt.Type)
		return
	}

	select {
	case l.C <- e:
	default:
		if atomic.AddUint64(&l.dropped, 1) == 1 {
			debug.ErrorLog.Println("receiver can't keep up, edges dropped")
		}
	}
}

// Dropped returns the number of events lost because channel C was full.
func (l *Line) Dropped() uint64 {
	return atomic.LoadUint64(&l.dropped)
}

// Close releases the Chip.
//
// It does not release any lines which may be requested - they must be closed
// independently.
func (c *Chip) Close() error {
	return c.gpiodChip.Close()
}

// Close releases all resources held by the requested line.
//
// Note that this includes waiting for any running event handler to return.
// As a consequence the Close must not be called from the context of the event
// handler - the Close should be called from a different goroutine.
func (l *Line) Close() error {
	if err := l.gpiodLine.Close(); err != nil {
		return err
	}
	close(l.C)
	return nil
}

// OpenOutput maps the GPIO memory from /dev/gpiomem and sets the pin (BCM GPIO number)
// as low output. Only one output can be open at a time.
func OpenOutput(p int, modulate bool) (*Output, error) {
	if err := gpio.Open(); err != nil {
		return nil, err
	}

	pin := gpio.NewPin(p)
	pin.Low()
	pin.Output()

	return &Output{pin: pin, Modulate: modulate, close: gpio.Close}, nil
}
