package hotkey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrNoTap is returned when a channel is used without an event source.
var ErrNoTap = errors.New("hotkey: no event tap configured")

// KeyTap observes key presses system wide. Implementations may deliver
// every press or only presses of target; the monitor compares either way.
// The returned channel is abandoned once ctx is cancelled.
type KeyTap interface {
	Listen(ctx context.Context, target Combo) (<-chan Combo, error)
}

// ClickTap observes mouse presses and releases system wide.
type ClickTap interface {
	Listen(ctx context.Context) (<-chan struct{}, error)
}

// Monitor owns the global, local and click channels.
//
// The global channel is bound to one target at a time. The local channel
// publishes every press it is given. Both may report the same physical
// press, once each.
type Monitor struct {
	bus    *Bus
	keys   KeyTap
	clicks ClickTap

	// dispatchMu is held while a global match is delivered, so an
	// unregister can wait for one in flight.
	dispatchMu sync.Mutex

	mu         sync.Mutex
	target     Combo
	registered bool
	generation uint64
	cancel     context.CancelFunc

	localOn bool
	onLocal func(Combo) bool

	watchingClicks bool
}

// NewMonitor creates a monitor publishing on bus. Either tap may be nil
// when the platform has none.
func NewMonitor(bus *Bus, keys KeyTap, clicks ClickTap) *Monitor {
	return &Monitor{
		bus:    bus,
		keys:   keys,
		clicks: clicks,
	}
}

// RegisterGlobalHandler binds the global channel to target. Every observed
// press equal to target calls onMatch and publishes TopicSummon. Calling it
// again replaces the previous target.
func (m *Monitor) RegisterGlobalHandler(ctx context.Context, target Combo, onMatch func(Combo)) error {
	if m.keys == nil {
		return ErrNoTap
	}

	m.mu.Lock()
	m.stopGlobalLocked()
	gen := m.generation
	m.mu.Unlock()

	listenCtx, cancel := context.WithCancel(ctx)
	events, err := m.keys.Listen(listenCtx, target)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to listen for %s: %w", target, err)
	}

	m.mu.Lock()
	if m.generation != gen {
		// Unregistered or replaced while the tap was starting.
		m.mu.Unlock()
		cancel()
		return nil
	}
	m.target = target
	m.registered = true
	m.cancel = cancel
	m.mu.Unlock()

	slog.Info("Global hotkey registered", "hotkey", target.String())
	go m.watchGlobal(listenCtx, gen, target, events, onMatch)
	return nil
}

// UnregisterGlobalHandler detaches the global channel, including a
// registration still starting its tap. Once it returns no further match is
// delivered. It must not be called from onMatch or a summon subscriber.
func (m *Monitor) UnregisterGlobalHandler() {
	m.mu.Lock()
	wasRegistered, target := m.registered, m.target
	m.stopGlobalLocked()
	m.mu.Unlock()

	// Wait out a match already being delivered.
	m.dispatchMu.Lock()
	m.dispatchMu.Unlock()

	if wasRegistered {
		slog.Info("Global hotkey unregistered", "hotkey", target.String())
	}
}

// Target returns the registered target, if any.
func (m *Monitor) Target() (Combo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target, m.registered
}

func (m *Monitor) stopGlobalLocked() {
	m.generation++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.registered = false
}

func (m *Monitor) current(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation == gen
}

// dispatch delivers one match unless gen has been superseded.
func (m *Monitor) dispatch(gen uint64, combo Combo, onMatch func(Combo)) bool {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()
	if !m.current(gen) {
		return false
	}
	if onMatch != nil {
		onMatch(combo)
	}
	m.bus.Publish(Notification{Topic: TopicSummon, Channel: ChannelGlobal, Combo: combo})
	return true
}

func (m *Monitor) watchGlobal(ctx context.Context, gen uint64, target Combo, events <-chan Combo, onMatch func(Combo)) {
	for {
		select {
		case <-ctx.Done():
			return
		case combo, ok := <-events:
			if !ok {
				return
			}
			if combo != target {
				continue
			}
			if !m.dispatch(gen, combo, onMatch) {
				return
			}
		}
	}
}

// StartLocalObservation turns the local channel on. onEveryPress, if not
// nil, sees every press after it is published and decides whether the
// event is swallowed.
func (m *Monitor) StartLocalObservation(onEveryPress func(Combo) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.localOn = true
	m.onLocal = onEveryPress
}

// StopLocalObservation turns the local channel off.
func (m *Monitor) StopLocalObservation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.localOn = false
	m.onLocal = nil
}

// LocalObserving reports whether the local channel is on.
func (m *Monitor) LocalObserving() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.localOn
}

// HandleLocalKeyDown feeds one in-app key press into the local channel.
// flags is an NSEvent modifier mask. It returns true when the press should
// not propagate further.
func (m *Monitor) HandleLocalKeyDown(keyCode uint16, flags uint64) bool {
	m.mu.Lock()
	on, fn := m.localOn, m.onLocal
	m.mu.Unlock()
	if !on {
		return false
	}

	combo := FromOSEvent(keyCode, flags)
	m.bus.Publish(Notification{Topic: TopicObserved, Channel: ChannelLocal, Combo: combo})
	if fn == nil {
		return false
	}
	return fn(combo)
}

// WatchClicks publishes TopicDismiss for every click observed anywhere.
// It installs the click channel once; later calls return nil.
func (m *Monitor) WatchClicks(ctx context.Context) error {
	if m.clicks == nil {
		return ErrNoTap
	}

	m.mu.Lock()
	if m.watchingClicks {
		m.mu.Unlock()
		return nil
	}
	m.watchingClicks = true
	m.mu.Unlock()

	clicks, err := m.clicks.Listen(ctx)
	if err != nil {
		m.mu.Lock()
		m.watchingClicks = false
		m.mu.Unlock()
		return fmt.Errorf("failed to listen for clicks: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-clicks:
				if !ok {
					return
				}
				m.bus.Publish(Notification{Topic: TopicDismiss, Channel: ChannelMouse})
			}
		}
	}()
	return nil
}
