// Package devicekind classifies an audio device's transport by name heuristics.
package devicekind

import (
	"strings"

	"github.com/meetcap/core/internal/audiochunk"
)

var bluetoothTokens = []string{"airpods", "bluetooth", "bt", "wireless"}
var virtualTokens = []string{"virtual", "loopback", "aggregate"}

// Detect classifies a device by name. Pure function, deterministic given
// identical inputs. bufferSize and sampleRate are accepted for future
// refinement but do not currently affect classification.
func Detect(name string, bufferSize, sampleRate int) audiochunk.InputDeviceKind {
	lower := strings.ToLower(name)

	for _, tok := range bluetoothTokens {
		if containsToken(lower, tok) {
			return audiochunk.KindBluetooth
		}
	}
	for _, tok := range virtualTokens {
		if containsToken(lower, tok) {
			return audiochunk.KindVirtual
		}
	}
	return audiochunk.KindWired
}

// containsToken matches tok as a substring of s. "bt" is short enough that a
// plain substring match risks false positives (e.g. "subtle"), so it is
// matched only when bounded by non-letter characters or string edges.
func containsToken(s, tok string) bool {
	if tok != "bt" {
		return strings.Contains(s, tok)
	}
	idx := 0
	for {
		i := strings.Index(s[idx:], tok)
		if i < 0 {
			return false
		}
		pos := idx + i
		before := byte(0)
		if pos > 0 {
			before = s[pos-1]
		}
		after := byte(0)
		if pos+len(tok) < len(s) {
			after = s[pos+len(tok)]
		}
		if !isLetter(before) && !isLetter(after) {
			return true
		}
		idx = pos + len(tok)
		if idx >= len(s) {
			return false
		}
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
