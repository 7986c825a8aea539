// Package hotkey encodes keyboard shortcuts and watches for them.
//
// A Combo is a key code plus a modifier set. It converts to and from the
// NSEvent and Carbon modifier masks and to a persisted record, and Monitor
// turns raw key presses from the global and local channels into Combos
// published on a Bus.
package hotkey

import "strings"

// Combo is one keyboard shortcut. Values are compared with ==.
type Combo struct {
	Key       KeyCode
	Modifiers Modifier
}

// Default is the shortcut used when nothing has been configured.
var Default = Combo{Key: KeySpace, Modifiers: Option | Command}

// New returns a combo for key and modifiers. Flags outside the four known
// modifiers are dropped.
func New(key KeyCode, modifiers Modifier) Combo {
	return Combo{Key: key, Modifiers: modifiers & allModifiers}
}

// FromOSEvent decodes a native key-down: a virtual key code and an NSEvent
// modifier mask.
func FromOSEvent(keyCode uint16, flags uint64) Combo {
	return Combo{Key: KeyCode(keyCode), Modifiers: FromOSModifierMask(flags)}
}

// Equal reports whether c and o name the same key and modifiers.
func (c Combo) Equal(o Combo) bool {
	return c.Key == o.Key && c.Modifiers == o.Modifiers
}

// IsEmpty reports whether c has no modifiers. Consumers treat such a combo
// as "no hotkey configured".
func (c Combo) IsEmpty() bool { return c.Modifiers == NoModifiers }

func (c Combo) HasShift() bool   { return c.Modifiers.Has(Shift) }
func (c Combo) HasControl() bool { return c.Modifiers.Has(Control) }
func (c Combo) HasOption() bool  { return c.Modifiers.Has(Option) }
func (c Combo) HasCommand() bool { return c.Modifiers.Has(Command) }

// OSModifierMask returns the modifiers in the NSEvent layout.
func (c Combo) OSModifierMask() uint64 { return c.Modifiers.OSMask() }

// LegacyModifierMask returns the modifiers in the Carbon layout.
func (c Combo) LegacyModifierMask() uint32 { return c.Modifiers.LegacyMask() }

// WithOSModifierMask returns c with its modifiers replaced by the ones
// decoded from an NSEvent mask.
func (c Combo) WithOSModifierMask(mask uint64) Combo {
	c.Modifiers = FromOSModifierMask(mask)
	return c
}

// WithLegacyModifierMask returns c with its modifiers replaced by the ones
// decoded from a Carbon mask.
func (c Combo) WithLegacyModifierMask(mask uint32) Combo {
	c.Modifiers = FromLegacyModifierMask(mask)
	return c
}

// Label returns the key label, or "" when the key has none.
func (c Combo) Label() string {
	label, _ := c.Key.Label()
	return label
}

// String describes c as "Shift + Command + A". A key without a label is
// left out.
func (c Combo) String() string {
	parts := c.Modifiers.Names()
	if label, ok := c.Key.Label(); ok {
		parts = append(parts, label)
	}
	return strings.Join(parts, " + ")
}
