package main

import (
	"log/slog"

	"markestedt/dictbar/hotkey"
)

type contentAction int

const (
	actionNone contentAction = iota
	actionDismiss
	actionSelectDictionary
	actionPreferences
)

// contentActionFor maps a press inside the popover to what it does there.
// For actionSelectDictionary the second result is the dictionary index.
//
//	Escape                      dismiss
//	Shift + Command + 1..n      select dictionary
//	Command + ,                 preferences
func contentActionFor(c hotkey.Combo, dictionaries int) (contentAction, int) {
	switch {
	case c.Key == hotkey.KeyEscape && c.Modifiers == hotkey.NoModifiers:
		return actionDismiss, 0
	case c.Key == hotkey.KeyComma && c.Modifiers == hotkey.Command:
		return actionPreferences, 0
	case c.Modifiers == hotkey.Shift|hotkey.Command:
		n, ok := c.Key.Digit()
		if ok && n >= 1 && n <= dictionaries {
			return actionSelectDictionary, n - 1
		}
	}
	return actionNone, 0
}

func (s *Shell) dispatchContent(c hotkey.Combo) {
	action, index := contentActionFor(c, len(s.Dictionaries()))
	switch action {
	case actionDismiss:
		s.bus.Publish(hotkey.Notification{Topic: hotkey.TopicDismiss, Channel: hotkey.ChannelLocal, Combo: c})
	case actionSelectDictionary:
		if err := s.selectDictionary(index, hotkey.ChannelLocal); err != nil {
			slog.Error("Failed to select dictionary", "index", index, "error", err)
		}
	case actionPreferences:
		if err := s.BeginCapture(); err != nil {
			slog.Error("Failed to open preferences", "error", err)
		}
	}
}
