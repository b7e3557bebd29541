package ffmpegbootstrap

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestBinaryName(t *testing.T) {
	want := "ffmpeg"
	if runtime.GOOS == "windows" {
		want = "ffmpeg.exe"
	}
	if got := binaryName(); got != want {
		t.Errorf("binaryName() = %q, want %q", got, want)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if !fileExists(file) {
		t.Error("expected fileExists to report true for a regular file")
	}
	if fileExists(dir) {
		t.Error("expected fileExists to report false for a directory")
	}
	if fileExists(filepath.Join(dir, "missing")) {
		t.Error("expected fileExists to report false for a missing path")
	}
}
