//go:build darwin

package platform

import (
	"context"
	"fmt"
	"log/slog"

	xhotkey "golang.design/x/hotkey"
	"golang.design/x/hotkey/mainthread"

	"markestedt/dictbar/hotkey"
)

// carbonModifiers maps the legacy Carbon mask to the library's modifiers.
var carbonModifiers = []struct {
	bits uint32
	mod  xhotkey.Modifier
}{
	{0x0200, xhotkey.ModShift},
	{0x1000, xhotkey.ModCtrl},
	{0x0800, xhotkey.ModOption},
	{0x0100, xhotkey.ModCmd},
}

// carbonKeyTap registers exactly the target with RegisterEventHotKey. It
// needs no Accessibility permission but only ever reports the target.
type carbonKeyTap struct{}

func newCarbonKeyTap() (hotkey.KeyTap, error) {
	return &carbonKeyTap{}, nil
}

func (carbonKeyTap) Listen(ctx context.Context, target hotkey.Combo) (<-chan hotkey.Combo, error) {
	legacy := target.LegacyModifierMask()
	mods := make([]xhotkey.Modifier, 0, len(carbonModifiers))
	for _, m := range carbonModifiers {
		if legacy&m.bits != 0 {
			mods = append(mods, m.mod)
		}
	}

	hk := xhotkey.New(mods, xhotkey.Key(target.Key))
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", target, err)
	}

	events := make(chan hotkey.Combo, 1)
	go func() {
		defer func() {
			if err := hk.Unregister(); err != nil {
				slog.Warn("Failed to unregister hotkey", "hotkey", target.String(), "error", err)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case <-hk.Keydown():
				select {
				case events <- target:
				default:
				}
			}
		}
	}()
	return events, nil
}

// RunOnMainThread runs fn with the main thread reserved for the hotkey
// library, as the Carbon backend requires on macOS.
func RunOnMainThread(fn func()) {
	mainthread.Init(fn)
}

// CallOnMainThread runs fn on the main thread and waits for it. It must be
// called from inside RunOnMainThread.
func CallOnMainThread(fn func()) {
	mainthread.Call(fn)
}
