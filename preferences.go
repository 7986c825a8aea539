package main

import (
	"fmt"
	"log/slog"

	"markestedt/dictbar/hotkey"
)

// Capturing reports whether a preference capture session is active.
func (s *Shell) Capturing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capturing
}

// BeginCapture opens the preferences: the global shortcut is released so
// pressing it can be recorded, and the persisted shortcut is reloaded.
func (s *Shell) BeginCapture() error {
	s.mu.Lock()
	if s.capturing {
		s.mu.Unlock()
		return nil
	}
	s.capturing = true
	view := s.view
	s.mu.Unlock()

	s.monitor.UnregisterGlobalHandler()

	record, err := s.store.LoadHotkey()
	if err != nil {
		slog.Warn("Failed to reload shortcut", "error", err)
	}
	current := hotkey.FromPersisted(record)
	s.mu.Lock()
	s.current = current
	s.mu.Unlock()

	slog.Info("Shortcut capture started", "hotkey", current.String())
	if view != nil {
		view.BroadcastCapture(true)
		s.ensurePage(view)
	}
	return nil
}

// EndCapture closes the preferences and registers the current shortcut
// again, changed or not.
func (s *Shell) EndCapture() error {
	s.mu.Lock()
	if !s.capturing {
		s.mu.Unlock()
		return nil
	}
	s.capturing = false
	ctx, current, view := s.ctx, s.current, s.view
	s.mu.Unlock()

	slog.Info("Shortcut capture ended", "hotkey", current.String())
	err := s.monitor.RegisterGlobalHandler(ctx, current, nil)
	if view != nil {
		view.BroadcastCapture(false)
		view.BroadcastHotkey(current, err == nil)
	}
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", current, err)
	}
	return nil
}

// acceptable reports whether c may replace current as the shortcut.
func acceptable(c, current hotkey.Combo) bool {
	if c.IsEmpty() || c == current {
		return false
	}
	_, ok := c.Key.Label()
	return ok
}

// capture handles one press during a capture session.
func (s *Shell) capture(c hotkey.Combo) {
	s.mu.Lock()
	if !s.capturing || !acceptable(c, s.current) {
		s.mu.Unlock()
		return
	}
	s.current = c
	s.mu.Unlock()

	if err := s.store.SaveHotkey(c.Persisted()); err != nil {
		slog.Error("Failed to save shortcut", "hotkey", c.String(), "error", err)
	}
	slog.Info("Shortcut changed", "hotkey", c.String())
	s.bus.Publish(hotkey.Notification{Topic: hotkey.TopicChanged, Channel: hotkey.ChannelApp, Combo: c})
}
