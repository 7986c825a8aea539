package web

import (
	"markestedt/dictbar/config"
	"markestedt/dictbar/hotkey"
)

// Server to client message types.
const (
	MessageTypeState        = "state"
	MessageTypeKey          = "key"
	MessageTypeNotification = "notification"
	MessageTypePopover      = "popover"
	MessageTypeDictionary   = "dictionary"
	MessageTypeHotkey       = "hotkey"
	MessageTypeCapture      = "capture"
	MessageTypeError        = "error"
)

// Client to server message types.
const (
	ClientMessageKeyDown = "keydown"
)

// Message is the envelope for everything sent to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ClientMessage is a frame received from the popover page. For keydown,
// Code is a DOM KeyboardEvent.code and ModifierFlags an NSEvent-style mask.
type ClientMessage struct {
	Type          string `json:"type"`
	Code          string `json:"code"`
	ModifierFlags uint64 `json:"modifierFlags"`
}

type KeyMessage struct {
	Swallow bool `json:"swallow"`
}

type NotificationMessage struct {
	Topic   string     `json:"topic"`
	Channel string     `json:"channel"`
	Hotkey  HotkeyView `json:"hotkey"`
}

type PopoverMessage struct {
	Open bool `json:"open"`
}

type DictionaryMessage struct {
	Index      int               `json:"index"`
	Dictionary config.Dictionary `json:"dictionary"`
}

type CaptureMessage struct {
	Active bool `json:"active"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

// HotkeyView is the JSON form of a shortcut.
type HotkeyView struct {
	KeyCode     uint16 `json:"keyCode"`
	Modifier    uint   `json:"modifier"`
	Description string `json:"description"`
	Registered  bool   `json:"registered,omitempty"`
}

func hotkeyView(c hotkey.Combo) HotkeyView {
	return HotkeyView{
		KeyCode:     uint16(c.Key),
		Modifier:    uint(c.Modifiers),
		Description: c.String(),
	}
}

// StateMessage is sent once to each new client.
type StateMessage struct {
	PopoverOpen  bool                `json:"popoverOpen"`
	Capturing    bool                `json:"capturing"`
	Hotkey       HotkeyView          `json:"hotkey"`
	Selected     int                 `json:"selected"`
	Dictionaries []config.Dictionary `json:"dictionaries"`
}
