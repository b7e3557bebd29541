// Package ffmpegbootstrap locates an ffmpeg binary the recording sink's
// external encoder can shell out to, following the search order in
// original_source's frontend/src-tauri/src/audio/ffmpeg.rs. It memoizes
// the result process-wide; it does not fetch a sidecar release (that would
// require a network download of a third-party binary, out of scope here).
package ffmpegbootstrap

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
)

var (
	once   sync.Once
	cached string
	cacheErr error
)

// Locate returns the path to an ffmpeg binary, searching PATH, a per-user
// local bin directory, the current working directory, and paths adjacent
// to the running executable, in that order. The result is memoized.
func Locate() (string, error) {
	once.Do(func() {
		cached, cacheErr = locate()
	})
	return cached, cacheErr
}

func locate() (string, error) {
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".local", "bin", binaryName())
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, binaryName())
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	if exePath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exePath), binaryName())
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("ffmpeg not found in PATH, local bin, working directory, or executable directory; please install ffmpeg")
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
