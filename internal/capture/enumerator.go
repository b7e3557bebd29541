package capture

import (
	"fmt"
	"strings"

	"github.com/gen2brain/malgo"

	"github.com/meetcap/core/internal/audiochunk"
	"github.com/meetcap/core/internal/devicekind"
)

// MalgoEnumerator implements devices.Enumerator over a live malgo context.
type MalgoEnumerator struct {
	ctx *malgo.AllocatedContext
}

// NewMalgoEnumerator wraps an already-initialized malgo context.
func NewMalgoEnumerator(ctx *malgo.AllocatedContext) *MalgoEnumerator {
	return &MalgoEnumerator{ctx: ctx}
}

func (e *MalgoEnumerator) DefaultInputDevice() (audiochunk.AudioDevice, error) {
	return e.defaultDevice(malgo.Capture)
}

func (e *MalgoEnumerator) DefaultOutputDevice() (audiochunk.AudioDevice, error) {
	return e.defaultDevice(malgo.Playback)
}

func (e *MalgoEnumerator) defaultDevice(deviceType malgo.DeviceType) (audiochunk.AudioDevice, error) {
	infos, err := e.ctx.Devices(deviceType)
	if err != nil {
		return audiochunk.AudioDevice{}, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	for _, info := range infos {
		if info.IsDefault != 0 {
			return toAudioDevice(info), nil
		}
	}
	if len(infos) > 0 {
		return toAudioDevice(infos[0]), nil
	}
	return audiochunk.AudioDevice{}, fmt.Errorf("no such device: no devices of type %v found", deviceType)
}

func (e *MalgoEnumerator) BuiltinInputDevice() (audiochunk.AudioDevice, bool, error) {
	return e.builtinDevice(malgo.Capture)
}

func (e *MalgoEnumerator) BuiltinOutputDevice() (audiochunk.AudioDevice, bool, error) {
	return e.builtinDevice(malgo.Playback)
}

func (e *MalgoEnumerator) builtinDevice(deviceType malgo.DeviceType) (audiochunk.AudioDevice, bool, error) {
	infos, err := e.ctx.Devices(deviceType)
	if err != nil {
		return audiochunk.AudioDevice{}, false, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	for _, info := range infos {
		name := info.Name()
		if devicekind.Detect(name, 0, 0) != audiochunk.KindWired {
			continue
		}
		lower := strings.ToLower(name)
		if strings.Contains(lower, "built-in") || strings.Contains(lower, "internal") || strings.Contains(lower, "macbook") {
			return toAudioDevice(info), true, nil
		}
	}
	for _, info := range infos {
		if devicekind.Detect(info.Name(), 0, 0) == audiochunk.KindWired {
			return toAudioDevice(info), true, nil
		}
	}
	return audiochunk.AudioDevice{}, false, nil
}

// InputDeviceByName finds a capture device whose display name contains name
// (case-insensitive substring match), for config-specified overrides.
func (e *MalgoEnumerator) InputDeviceByName(name string) (audiochunk.AudioDevice, bool, error) {
	return e.deviceByName(malgo.Capture, name)
}

// OutputDeviceByName finds a playback device whose display name contains
// name (case-insensitive substring match), for config-specified overrides.
func (e *MalgoEnumerator) OutputDeviceByName(name string) (audiochunk.AudioDevice, bool, error) {
	return e.deviceByName(malgo.Playback, name)
}

func (e *MalgoEnumerator) deviceByName(deviceType malgo.DeviceType, name string) (audiochunk.AudioDevice, bool, error) {
	infos, err := e.ctx.Devices(deviceType)
	if err != nil {
		return audiochunk.AudioDevice{}, false, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	lowerWant := strings.ToLower(name)
	for _, info := range infos {
		if strings.Contains(strings.ToLower(info.Name()), lowerWant) {
			return toAudioDevice(info), true, nil
		}
	}
	return audiochunk.AudioDevice{}, false, nil
}

// ResolveDeviceInfo re-enumerates devices of deviceType and returns the
// malgo.DeviceInfo whose ID matches handle (as produced by toAudioDevice's
// Handle field), so a device picked by devices.Selector can be reopened by
// capture.New for that specific endpoint rather than the OS default.
func (e *MalgoEnumerator) ResolveDeviceInfo(deviceType malgo.DeviceType, handle string) (*malgo.DeviceInfo, error) {
	infos, err := e.ctx.Devices(deviceType)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	for i := range infos {
		if infos[i].ID.String() == handle {
			return &infos[i], nil
		}
	}
	return nil, fmt.Errorf("no device found matching handle %q", handle)
}

func toAudioDevice(info malgo.DeviceInfo) audiochunk.AudioDevice {
	name := info.Name()
	return audiochunk.AudioDevice{
		Handle:      info.ID.String(),
		DisplayName: name,
		Kind:        devicekind.Detect(name, 0, 0),
	}
}
