//go:build !darwin

package platform

import "markestedt/dictbar/hotkey"

func newCarbonKeyTap() (hotkey.KeyTap, error) {
	return nil, ErrUnsupported
}

// RunOnMainThread runs fn directly; only macOS needs the main thread.
func RunOnMainThread(fn func()) {
	fn()
}

// CallOnMainThread runs fn on the calling goroutine.
func CallOnMainThread(fn func()) {
	fn()
}
