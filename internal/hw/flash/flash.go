package flash

import (
	"github.com/cjeanneret/BoothGo/internal/debug"
	"github.com/cjeanneret/BoothGo/internal/hw/gpio"
)

// Lamp is anything that can light up the subject during a capture.
type Lamp interface {
	On() error
	Off() error
}

// GPIOLamp drives a flash lamp (LED strip behind a MOSFET or a relay)
// from a single output pin. HIGH = lit.
type GPIOLamp struct {
	gpio gpio.Driver
	pin  int
}

// NewGPIOLamp configures pin as an output and switches the lamp off.
func NewGPIOLamp(g gpio.Driver, pin int) *GPIOLamp {
	_ = g.SetupPin(pin, gpio.Output)
	_ = g.WritePin(pin, gpio.Low)
	return &GPIOLamp{gpio: g, pin: pin}
}

func (l *GPIOLamp) On() error {
	debug.Verbose("Flash: lamp ON (pin %d)", l.pin)
	return l.gpio.WritePin(l.pin, gpio.High)
}

func (l *GPIOLamp) Off() error {
	debug.Verbose("Flash: lamp OFF (pin %d)", l.pin)
	return l.gpio.WritePin(l.pin, gpio.Low)
}

// NoLamp is used when no flash pin is configured; the flash is then purely
// the on-screen white overlay.
type NoLamp struct{}

func (NoLamp) On() error  { return nil }
func (NoLamp) Off() error { return nil }
