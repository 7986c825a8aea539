//go:build !windows

package platform

import (
	"context"
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"

	"markestedt/dictbar/hotkey"
)

// hookStream owns the single gohook event stream of the process. It starts
// with the first listener and ends when the last one leaves.
type hookStream struct {
	mu      sync.Mutex
	running bool
	stop    chan struct{}
	subs    *listeners
}

var sharedHook = &hookStream{subs: newListeners()}

func (s *hookStream) ensureRunning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})

	evChan := hook.Start()
	go s.run(evChan, s.stop)
	slog.Info("Event tap started")
}

func (s *hookStream) stopIfIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || !s.subs.empty() {
		return
	}
	s.running = false
	close(s.stop)
	hook.End()
	slog.Info("Event tap stopped")
}

func (s *hookStream) run(evChan chan hook.Event, stop chan struct{}) {
	left := hook.MouseMap["left"]
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-evChan:
			if !ok {
				return
			}
			switch ev.Kind {
			case hook.KeyHold:
				// KeyHold is the raw key press; KeyDown only follows for
				// keys that type a character.
				s.subs.emitKey(comboFromHook(ev.Rawcode, ev.Mask))
			case hook.MouseHold, hook.MouseDown:
				if ev.Button == left {
					s.subs.emitClick()
				}
			}
		}
	}
}

type hookKeyTap struct{ stream *hookStream }

func newHookKeyTap() hotkey.KeyTap { return &hookKeyTap{stream: sharedHook} }

// Listen delivers every key press; the target is matched by the caller.
func (t *hookKeyTap) Listen(ctx context.Context, _ hotkey.Combo) (<-chan hotkey.Combo, error) {
	ch := t.stream.subs.addKeys(ctx, t.stream.stopIfIdle)
	t.stream.ensureRunning()
	return ch, nil
}

type hookClickTap struct{ stream *hookStream }

func newHookClickTap() hotkey.ClickTap { return &hookClickTap{stream: sharedHook} }

func (t *hookClickTap) Listen(ctx context.Context) (<-chan struct{}, error) {
	ch := t.stream.subs.addClicks(ctx, t.stream.stopIfIdle)
	t.stream.ensureRunning()
	return ch, nil
}
