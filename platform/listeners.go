package platform

import (
	"context"
	"log/slog"
	"sync"

	"markestedt/dictbar/hotkey"
)

const listenerBuffer = 16

// listeners fans one native event stream out to every active Listen call.
// Sends never block; a full listener drops the event.
type listeners struct {
	mu     sync.Mutex
	nextID int
	keys   map[int]chan hotkey.Combo
	clicks map[int]chan struct{}
}

func newListeners() *listeners {
	return &listeners{
		keys:   make(map[int]chan hotkey.Combo),
		clicks: make(map[int]chan struct{}),
	}
}

// addKeys registers a key listener until ctx is done. onIdle runs after the
// last listener of either kind is removed.
func (l *listeners) addKeys(ctx context.Context, onIdle func()) <-chan hotkey.Combo {
	ch := make(chan hotkey.Combo, listenerBuffer)
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.keys[id] = ch
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		delete(l.keys, id)
		idle := l.emptyLocked()
		l.mu.Unlock()
		if idle && onIdle != nil {
			onIdle()
		}
	}()
	return ch
}

// addClicks registers a click listener until ctx is done.
func (l *listeners) addClicks(ctx context.Context, onIdle func()) <-chan struct{} {
	ch := make(chan struct{}, listenerBuffer)
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.clicks[id] = ch
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		delete(l.clicks, id)
		idle := l.emptyLocked()
		l.mu.Unlock()
		if idle && onIdle != nil {
			onIdle()
		}
	}()
	return ch
}

func (l *listeners) emitKey(c hotkey.Combo) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.keys {
		select {
		case ch <- c:
		default:
			slog.Debug("Key listener full, dropping event", "hotkey", c.String())
		}
	}
}

func (l *listeners) emitClick() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.clicks {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (l *listeners) empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.emptyLocked()
}

func (l *listeners) emptyLocked() bool {
	return len(l.keys) == 0 && len(l.clicks) == 0
}
