package flash

import (
	"testing"

	"github.com/cjeanneret/BoothGo/internal/hw/gpio"
)

// recordingDriver records GPIO calls for verification.
type recordingDriver struct {
	calls []gpioCall
}

type gpioCall struct {
	op    string
	pin   int
	level gpio.Level
}

func (d *recordingDriver) SetupPin(pin int, mode gpio.PinMode) error {
	d.calls = append(d.calls, gpioCall{op: "setup", pin: pin})
	return nil
}

func (d *recordingDriver) WritePin(pin int, level gpio.Level) error {
	d.calls = append(d.calls, gpioCall{op: "write", pin: pin, level: level})
	return nil
}

func (d *recordingDriver) ReadPin(pin int) (gpio.Level, error) {
	return gpio.Low, nil
}

func (d *recordingDriver) Close() error { return nil }

func TestGPIOLamp_StartsOff(t *testing.T) {
	drv := &recordingDriver{}
	NewGPIOLamp(drv, 27)

	if len(drv.calls) != 2 {
		t.Fatalf("expected setup + write, got %v", drv.calls)
	}
	if drv.calls[0].op != "setup" || drv.calls[0].pin != 27 {
		t.Errorf("first call = %+v, want setup on pin 27", drv.calls[0])
	}
	if drv.calls[1].level != gpio.Low {
		t.Error("lamp should be switched off at construction")
	}
}

func TestGPIOLamp_OnOff(t *testing.T) {
	drv := &recordingDriver{}
	lamp := NewGPIOLamp(drv, 27)
	drv.calls = nil

	if err := lamp.On(); err != nil {
		t.Fatalf("On: %v", err)
	}
	if err := lamp.Off(); err != nil {
		t.Fatalf("Off: %v", err)
	}

	want := []gpio.Level{gpio.High, gpio.Low}
	if len(drv.calls) != len(want) {
		t.Fatalf("expected %d writes, got %v", len(want), drv.calls)
	}
	for i, lvl := range want {
		if drv.calls[i].pin != 27 || drv.calls[i].level != lvl {
			t.Errorf("write %d = %+v, want pin 27 level %v", i, drv.calls[i], lvl)
		}
	}
}

func TestLampImplementations(t *testing.T) {
	var _ Lamp = &GPIOLamp{}
	var _ Lamp = NoLamp{}
}
