// Package devices selects safe recording devices, overriding risky Bluetooth
// defaults the way original_source's fallback.rs does.
package devices

import (
	"runtime"

	"github.com/meetcap/core/internal/audiochunk"
	"github.com/meetcap/core/internal/devicekind"
	"github.com/meetcap/core/internal/logger"
)

// Enumerator is the OS-device-listing collaborator C2 depends on. Capture
// backends implement this; it is kept tiny so selection logic is testable
// without a real audio device.
type Enumerator interface {
	DefaultInputDevice() (audiochunk.AudioDevice, error)
	DefaultOutputDevice() (audiochunk.AudioDevice, error)
	BuiltinInputDevice() (audiochunk.AudioDevice, bool, error)
	BuiltinOutputDevice() (audiochunk.AudioDevice, bool, error)
	InputDeviceByName(name string) (audiochunk.AudioDevice, bool, error)
	OutputDeviceByName(name string) (audiochunk.AudioDevice, bool, error)
}

// Selector chooses microphone and system devices per the Bluetooth-fallback
// policy in spec §4.2.
type Selector struct {
	enum Enumerator
	log  *logger.ContextLogger
}

// New creates a Selector over the given device enumerator.
func New(enum Enumerator, log *logger.Logger) *Selector {
	return &Selector{enum: enum, log: log.With("devices")}
}

// SelectSafeDevices queries OS defaults and applies the Bluetooth mic
// fallback / platform-specific system device policy. Either device may be
// the zero value if no input/output path exists.
func (s *Selector) SelectSafeDevices() (mic audiochunk.AudioDevice, system audiochunk.AudioDevice, err error) {
	return s.SelectSafeDevicesNamed("", "")
}

// SelectSafeDevicesNamed behaves like SelectSafeDevices, but honors
// micName/sysName config overrides: if non-empty and a matching device is
// found, it is used as-is (no Bluetooth fallback applied), since an explicit
// choice is assumed deliberate.
func (s *Selector) SelectSafeDevicesNamed(micName, sysName string) (mic audiochunk.AudioDevice, system audiochunk.AudioDevice, err error) {
	if micName != "" {
		mic, err = s.namedInput(micName)
	} else {
		mic, err = s.selectMic()
	}
	if err != nil {
		return audiochunk.AudioDevice{}, audiochunk.AudioDevice{}, err
	}

	if sysName != "" {
		system, err = s.namedOutput(sysName)
	} else {
		system, err = s.selectSystem()
	}
	if err != nil {
		return audiochunk.AudioDevice{}, audiochunk.AudioDevice{}, err
	}
	return mic, system, nil
}

func (s *Selector) namedInput(name string) (audiochunk.AudioDevice, error) {
	dev, ok, err := s.enum.InputDeviceByName(name)
	if err != nil {
		return audiochunk.AudioDevice{}, err
	}
	if !ok {
		s.log.Warn("configured microphone %q not found, falling back to default selection", name)
		return s.selectMic()
	}
	dev.Kind = devicekind.Detect(dev.DisplayName, 0, 0)
	return dev, nil
}

func (s *Selector) namedOutput(name string) (audiochunk.AudioDevice, error) {
	dev, ok, err := s.enum.OutputDeviceByName(name)
	if err != nil {
		return audiochunk.AudioDevice{}, err
	}
	if !ok {
		s.log.Warn("configured system audio device %q not found, falling back to default selection", name)
		return s.selectSystem()
	}
	dev.Kind = devicekind.Detect(dev.DisplayName, 0, 0)
	return dev, nil
}

func (s *Selector) selectMic() (audiochunk.AudioDevice, error) {
	def, err := s.enum.DefaultInputDevice()
	if err != nil {
		return audiochunk.AudioDevice{}, err
	}
	def.Kind = devicekind.Detect(def.DisplayName, 0, 0)

	if !def.Kind.IsBluetooth() {
		return def, nil
	}

	// Bluetooth input is 50-120ms variable latency and jitter; that
	// destabilizes downstream mixer timing, so prefer the built-in mic.
	builtin, ok, err := s.enum.BuiltinInputDevice()
	if err != nil {
		return audiochunk.AudioDevice{}, err
	}
	if ok {
		s.log.Warn("default microphone %q is Bluetooth, falling back to built-in %q", def.DisplayName, builtin.DisplayName)
		builtin.Kind = audiochunk.KindWired
		return builtin, nil
	}

	s.log.Warn("default microphone %q is Bluetooth and no built-in input was found, using it anyway", def.DisplayName)
	return def, nil
}

func (s *Selector) selectSystem() (audiochunk.AudioDevice, error) {
	def, err := s.enum.DefaultOutputDevice()
	if err != nil {
		return audiochunk.AudioDevice{}, err
	}
	def.Kind = devicekind.Detect(def.DisplayName, 0, 0)

	if !def.Kind.IsBluetooth() {
		return def, nil
	}

	// On Apple platforms system audio is tapped pre-encoding regardless of
	// the output route, so the Bluetooth default is safe to keep. Elsewhere
	// loopback capture rides the real output device's clock, so jitter on a
	// Bluetooth output endpoint does propagate and we prefer built-in.
	if runtime.GOOS == "darwin" {
		return def, nil
	}

	builtin, ok, err := s.enum.BuiltinOutputDevice()
	if err != nil {
		return audiochunk.AudioDevice{}, err
	}
	if ok {
		s.log.Warn("default system output %q is Bluetooth, falling back to built-in %q", def.DisplayName, builtin.DisplayName)
		builtin.Kind = audiochunk.KindWired
		return builtin, nil
	}

	s.log.Warn("default system output %q is Bluetooth and no built-in output was found, using it anyway", def.DisplayName)
	return def, nil
}
