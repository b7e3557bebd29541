package devicekind

import (
	"testing"

	"github.com/meetcap/core/internal/audiochunk"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		name string
		want audiochunk.InputDeviceKind
	}{
		{"AirPods Pro", audiochunk.KindBluetooth},
		{"Bluetooth Headset", audiochunk.KindBluetooth},
		{"Wireless Mic", audiochunk.KindBluetooth},
		{"Sony WH-1000XM4 BT", audiochunk.KindBluetooth},
		{"Virtual Cable", audiochunk.KindVirtual},
		{"Loopback Audio", audiochunk.KindVirtual},
		{"Aggregate Device", audiochunk.KindVirtual},
		{"MacBook Pro Microphone", audiochunk.KindWired},
		{"USB Audio Device", audiochunk.KindWired},
		{"subtle sounds input", audiochunk.KindWired}, // "bt" substring shouldn't false-positive
	}

	for _, c := range cases {
		got := Detect(c.name, 0, 0)
		if got != c.want {
			t.Errorf("Detect(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	a := Detect("AirPods Max", 512, 48000)
	b := Detect("AirPods Max", 512, 48000)
	if a != b {
		t.Errorf("Detect is not deterministic: %v != %v", a, b)
	}
}
