package raspberry

import (
	"fmt"
	"time"

	"github.com/womat/debug"
)

// spin is the remaining time of a wait which is busy waited instead of slept.
const spin = time.Millisecond

type pin interface {
	High()
	Low()
}

// Output drives the IR LED. It implements transmitter.Sink.
type Output struct {
	pin pin
	// Modulate generates the carrier by toggling the pin,
	// otherwise the pin gates an external carrier (e.g. a 555 or a PWM output).
	Modulate bool

	// on and off are the carrier pulse and pause.
	on, off time.Duration
	close   func() error
}

// Configure sets the carrier.
func (o *Output) Configure(frequency uint32, dutyCycle float32) error {
	if frequency == 0 || dutyCycle <= 0 || dutyCycle >= 1 {
		return fmt.Errorf("carrier %v Hz %v: %w", frequency, dutyCycle, ErrInvalidParam)
	}

	period := time.Second / time.Duration(frequency)
	o.on = time.Duration(float64(period) * float64(dutyCycle))
	o.off = period - o.on
	debug.DebugLog.Printf("carrier period %v, pulse %v", period, o.on)
	return nil
}

// Transmit holds the carrier on or off for d.
func (o *Output) Transmit(level bool, d time.Duration) error {
	start := time.Now()
	end := start.Add(d)

	if !level {
		o.pin.Low()
		wait(end)
		return nil
	}

	if !o.Modulate {
		o.pin.High()
		wait(end)
		return nil
	}

	if o.on == 0 {
		return fmt.Errorf("carrier not configured: %w", ErrInvalidParam)
	}

	// pulses are aligned to the start, the last one may be cut
	for t := start; t.Before(end); t = t.Add(o.on + o.off) {
		o.pin.High()
		wait(earliest(t.Add(o.on), end))
		o.pin.Low()
		wait(earliest(t.Add(o.on+o.off), end))
	}
	return nil
}

// Close switches the LED off and releases the gpio memory.
func (o *Output) Close() error {
	o.pin.Low()
	if o.close == nil {
		return nil
	}
	return o.close()
}

// wait sleeps until shortly before deadline and busy waits the rest.
func wait(deadline time.Time) {
	if d := time.Until(deadline) - spin; d > 0 {
		time.Sleep(d)
	}
	for time.Now().Before(deadline) {
	}
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
