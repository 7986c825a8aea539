// Package platform provides the native event sources behind the hotkey
// monitor: a system-wide key tap and a system-wide click tap.
package platform

import (
	"errors"
	"fmt"

	"markestedt/dictbar/hotkey"
)

// Key tap backends.
const (
	// BackendHook observes every key press through an event tap. On macOS
	// it needs the Accessibility permission.
	BackendHook = "hook"
	// BackendCarbon registers only the target combination with the system
	// hotkey API. macOS only.
	BackendCarbon = "carbon"
)

// ErrUnsupported is returned for a backend the current OS cannot provide.
var ErrUnsupported = errors.New("platform: backend not supported on this OS")

// NewKeyTap returns the system-wide key source for backend.
func NewKeyTap(backend string) (hotkey.KeyTap, error) {
	switch backend {
	case "", BackendHook:
		return newHookKeyTap(), nil
	case BackendCarbon:
		return newCarbonKeyTap()
	default:
		return nil, fmt.Errorf("unknown hotkey backend %q", backend)
	}
}

// NewClickTap returns the system-wide mouse click source.
func NewClickTap() hotkey.ClickTap {
	return newHookClickTap()
}
