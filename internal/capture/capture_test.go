package capture

import (
	"math"
	"testing"
)

func encodeF32LE(v float32) []byte {
	bits := math.Float32bits(v)
	return []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
}

func TestDecodeF32LE_RoundTrips(t *testing.T) {
	for _, v := range []float32{0, 1, -1, 0.5, -0.333} {
		got := decodeF32LE(encodeF32LE(v))
		if got != v {
			t.Errorf("decodeF32LE round-trip failed for %v, got %v", v, got)
		}
	}
}

func TestBytesToFloat32_Mono(t *testing.T) {
	var buf []byte
	for _, v := range []float32{0.1, 0.2, 0.3} {
		buf = append(buf, encodeF32LE(v)...)
	}
	out := bytesToFloat32(buf, 1)
	if len(out) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(out))
	}
	for i, want := range []float32{0.1, 0.2, 0.3} {
		if out[i] != want {
			t.Errorf("sample %d = %v, want %v", i, out[i], want)
		}
	}
}

func TestBytesToFloat32_DownmixesStereo(t *testing.T) {
	var buf []byte
	buf = append(buf, encodeF32LE(1.0)...)
	buf = append(buf, encodeF32LE(-1.0)...)
	out := bytesToFloat32(buf, 2)
	if len(out) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(out))
	}
	if out[0] != 0 {
		t.Errorf("expected opposite-phase stereo to average to 0, got %v", out[0])
	}
}

func TestSourceName(t *testing.T) {
	if sourceName(SourceMicrophone) != "mic" {
		t.Error("expected mic source name")
	}
	if sourceName(SourceSystem) != "system" {
		t.Error("expected system source name")
	}
}

func TestDeviceTypeFor(t *testing.T) {
	if deviceTypeFor(SourceMicrophone) != 0 {
		t.Error("expected DeviceMicrophone for mic source")
	}
	if deviceTypeFor(SourceSystem).String() != "system" {
		t.Error("expected DeviceSystem for system source")
	}
}
