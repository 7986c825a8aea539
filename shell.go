package main

import (
	"context"
	"log/slog"
	"sync"

	"markestedt/dictbar/config"
	"markestedt/dictbar/hotkey"
	"markestedt/dictbar/storage"
)

// Store persists user defaults and activity.
type Store interface {
	LoadHotkey() (hotkey.Record, error)
	SaveHotkey(hotkey.Record) error
	LoadSelectedDictionary() (int, bool, error)
	SaveSelectedDictionary(index int) error
	SaveActivity(a *storage.Activity) error
}

// View is told about every state change. The web server implements it.
type View interface {
	BroadcastNotification(n hotkey.Notification)
	BroadcastPopover(open bool)
	BroadcastDictionary(index int)
	BroadcastHotkey(c hotkey.Combo, registered bool)
	BroadcastCapture(active bool)
	BroadcastState()
	ClientCount() int
	URL() string
}

// HotkeyLabeler shows the current shortcut, like the tray menu does.
type HotkeyLabeler interface {
	SetHotkeyLabel(label string)
}

// Shell owns the popover: whether it is shown, which dictionary it shows,
// and the shortcut that summons it.
type Shell struct {
	bus     *hotkey.Bus
	monitor *hotkey.Monitor
	store   Store

	// openPage shows the popover page when no client is connected.
	openPage func(url string)

	mu        sync.Mutex
	ctx       context.Context
	open      bool
	dicts     []config.Dictionary
	selected  int
	current   hotkey.Combo
	capturing bool
	view      View
	labeler   HotkeyLabeler
	unsub     []func()
}

func NewShell(bus *hotkey.Bus, monitor *hotkey.Monitor, store Store, dicts []config.Dictionary, openPage func(string)) *Shell {
	return &Shell{
		bus:      bus,
		monitor:  monitor,
		store:    store,
		openPage: openPage,
		dicts:    dicts,
		current:  hotkey.Default,
		ctx:      context.Background(),
	}
}

// AttachView sets the view. It must be called before Start.
func (s *Shell) AttachView(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// AttachLabeler sets where the shortcut description is shown.
func (s *Shell) AttachLabeler(l HotkeyLabeler) {
	s.mu.Lock()
	s.labeler = l
	label := s.current.String()
	s.mu.Unlock()
	l.SetHotkeyLabel(label)
}

// Start restores the persisted state, subscribes to the bus and registers
// the global shortcut. A failed registration is logged, not returned: the
// popover stays reachable from the tray.
func (s *Shell) Start(ctx context.Context) {
	record, err := s.store.LoadHotkey()
	if err != nil {
		slog.Warn("Failed to load shortcut, using default", "error", err)
	}
	current := hotkey.FromPersisted(record)

	selected, ok, err := s.store.LoadSelectedDictionary()
	if err != nil {
		slog.Warn("Failed to load selected dictionary", "error", err)
	}

	unsub := []func(){
		s.bus.Subscribe(hotkey.TopicSummon, s.onSummon),
		s.bus.Subscribe(hotkey.TopicDismiss, s.onDismiss),
		s.bus.Subscribe(hotkey.TopicObserved, s.onObserved),
		s.bus.Subscribe(hotkey.TopicChanged, s.onChanged),
	}
	for _, topic := range []hotkey.Topic{hotkey.TopicObserved, hotkey.TopicSummon, hotkey.TopicDismiss, hotkey.TopicChanged} {
		unsub = append(unsub, s.bus.Subscribe(topic, s.relay))
	}

	s.mu.Lock()
	s.ctx = ctx
	s.current = current
	if ok && selected >= 0 && selected < len(s.dicts) {
		s.selected = selected
	}
	s.unsub = append(s.unsub, unsub...)
	labeler := s.labeler
	s.mu.Unlock()

	if labeler != nil {
		labeler.SetHotkeyLabel(current.String())
	}

	if err := s.monitor.RegisterGlobalHandler(ctx, current, nil); err != nil {
		slog.Error("Failed to register global shortcut", "hotkey", current.String(), "error", err)
	}
	s.monitor.StartLocalObservation(s.swallow)

	slog.Info("Popover ready", "hotkey", current.String(), "dictionary", s.Dictionary().Name)
}

// Stop detaches the shell from the bus and the monitor.
func (s *Shell) Stop() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()

	for _, fn := range unsub {
		fn()
	}
	s.monitor.StopLocalObservation()
	s.monitor.UnregisterGlobalHandler()
}

// ApplyConfig takes a reloaded dictionary list.
func (s *Shell) ApplyConfig(cfg *config.Config) {
	s.mu.Lock()
	s.dicts = cfg.Dictionaries
	if s.selected >= len(s.dicts) {
		s.selected = 0
	}
	view := s.view
	s.mu.Unlock()

	if view != nil {
		view.BroadcastState()
	}
}

func (s *Shell) PopoverOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Shell) OpenPopover()  { s.setOpen(true) }
func (s *Shell) ClosePopover() { s.setOpen(false) }

func (s *Shell) TogglePopover() {
	s.mu.Lock()
	open := !s.open
	s.mu.Unlock()
	s.setOpen(open)
}

func (s *Shell) setOpen(open bool) {
	s.mu.Lock()
	if s.open == open {
		s.mu.Unlock()
		return
	}
	s.open = open
	view := s.view
	s.mu.Unlock()

	slog.Debug("Popover visibility changed", "open", open)
	if view == nil {
		return
	}
	view.BroadcastPopover(open)
	if open {
		s.ensurePage(view)
	}
}

// ensurePage opens the popover page unless one is already connected.
func (s *Shell) ensurePage(view View) {
	if s.openPage == nil || view.ClientCount() > 0 {
		return
	}
	if url := view.URL(); url != "" {
		s.openPage(url)
	}
}

func (s *Shell) Dictionaries() []config.Dictionary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dicts
}

func (s *Shell) SelectedDictionary() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Dictionary returns the selected dictionary.
func (s *Shell) Dictionary() config.Dictionary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected < len(s.dicts) {
		return s.dicts[s.selected]
	}
	return config.Dictionary{}
}

// SelectDictionary switches to the dictionary at index and persists the
// choice. Selecting the current dictionary does nothing.
func (s *Shell) SelectDictionary(index int) error {
	return s.selectDictionary(index, hotkey.ChannelApp)
}

func (s *Shell) selectDictionary(index int, channel hotkey.Channel) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.dicts) || index == s.selected {
		s.mu.Unlock()
		return nil
	}
	s.selected = index
	name := s.dicts[index].Name
	view := s.view
	s.mu.Unlock()

	slog.Info("Dictionary selected", "dictionary", name)
	if err := s.store.SaveSelectedDictionary(index); err != nil {
		return err
	}
	s.record("select", channel, name)
	if view != nil {
		view.BroadcastDictionary(index)
	}
	return nil
}

// Hotkey returns the current shortcut and whether it is registered.
func (s *Shell) Hotkey() (hotkey.Combo, bool) {
	_, registered := s.monitor.Target()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, registered
}

// HandleKeyDown feeds an in-app key press to the local channel.
func (s *Shell) HandleKeyDown(keyCode uint16, flags uint64) bool {
	return s.monitor.HandleLocalKeyDown(keyCode, flags)
}

func (s *Shell) onSummon(hotkey.Notification)  { s.TogglePopover() }
func (s *Shell) onDismiss(hotkey.Notification) { s.ClosePopover() }

func (s *Shell) onObserved(n hotkey.Notification) {
	if s.Capturing() {
		s.capture(n.Combo)
		return
	}
	s.dispatchContent(n.Combo)
}

func (s *Shell) onChanged(n hotkey.Notification) {
	s.mu.Lock()
	labeler, view := s.labeler, s.view
	s.mu.Unlock()

	if labeler != nil {
		labeler.SetHotkeyLabel(n.Combo.String())
	}
	if view != nil {
		_, registered := s.monitor.Target()
		view.BroadcastHotkey(n.Combo, registered)
	}
}

// relay forwards every notification to the view and records the ones that
// change what the user sees.
func (s *Shell) relay(n hotkey.Notification) {
	s.mu.Lock()
	view := s.view
	s.mu.Unlock()

	if view != nil {
		view.BroadcastNotification(n)
	}
	if n.Topic != hotkey.TopicObserved {
		shortcut := ""
		if n.Channel != hotkey.ChannelMouse {
			shortcut = n.Combo.String()
		}
		s.record(string(n.Topic), n.Channel, shortcut)
	}
}

func (s *Shell) record(topic string, channel hotkey.Channel, shortcut string) {
	a := &storage.Activity{Topic: topic, Channel: channel.String(), Shortcut: shortcut}
	if err := s.store.SaveActivity(a); err != nil {
		slog.Warn("Failed to record activity", "topic", topic, "error", err)
	}
}

// swallow decides whether an in-app press stops at the popover.
func (s *Shell) swallow(c hotkey.Combo) bool {
	if s.Capturing() {
		return true
	}
	action, _ := contentActionFor(c, len(s.Dictionaries()))
	return action != actionNone
}
