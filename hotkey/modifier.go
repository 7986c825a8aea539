package hotkey

import "strings"

// Modifier is a set of modifier flags. The numeric value is the internal
// encoding, also used by the persisted record.
type Modifier uint

const (
	Shift Modifier = 1 << iota
	Control
	Option
	Command
)

// NoModifiers is the empty set.
const NoModifiers Modifier = 0

const allModifiers = Shift | Control | Option | Command

// modifierOrder is the fixed display and table order.
var modifierOrder = []Modifier{Shift, Control, Option, Command}

var modifierNames = map[Modifier]string{
	Shift:   "Shift",
	Control: "Control",
	Option:  "Option",
	Command: "Command",
}

// Has reports whether every flag in flag is set.
func (m Modifier) Has(flag Modifier) bool {
	return flag != 0 && m&flag == flag
}

// Names returns the set flags in Shift, Control, Option, Command order.
func (m Modifier) Names() []string {
	names := make([]string, 0, len(modifierOrder))
	for _, flag := range modifierOrder {
		if m.Has(flag) {
			names = append(names, modifierNames[flag])
		}
	}
	return names
}

func (m Modifier) String() string {
	return strings.Join(m.Names(), " + ")
}

// MaskBit pairs one modifier flag with the bits that represent it in an
// external mask. Bits may hold more than one bit (left and right keys).
type MaskBit struct {
	Flag Modifier
	Bits uint64
}

// MaskTable converts between the internal set and one external mask layout.
// It is applied flag by flag, so bits outside the table are dropped.
type MaskTable []MaskBit

// Encode returns the external mask for m.
func (t MaskTable) Encode(m Modifier) uint64 {
	var mask uint64
	for _, e := range t {
		if m.Has(e.Flag) {
			mask |= e.Bits
		}
	}
	return mask
}

// Decode returns the modifier set present in mask.
func (t MaskTable) Decode(mask uint64) Modifier {
	var m Modifier
	for _, e := range t {
		if mask&e.Bits != 0 {
			m |= e.Flag
		}
	}
	return m
}

// OSMaskTable is the NSEvent modifier flag layout.
var OSMaskTable = MaskTable{
	{Flag: Shift, Bits: 1 << 17},
	{Flag: Control, Bits: 1 << 18},
	{Flag: Option, Bits: 1 << 19},
	{Flag: Command, Bits: 1 << 20},
}

// LegacyMaskTable is the Carbon EventModifiers layout (shiftKey, controlKey,
// optionKey, cmdKey).
var LegacyMaskTable = MaskTable{
	{Flag: Shift, Bits: 0x0200},
	{Flag: Control, Bits: 0x1000},
	{Flag: Option, Bits: 0x0800},
	{Flag: Command, Bits: 0x0100},
}

// FromOSModifierMask decodes an NSEvent modifier mask.
func FromOSModifierMask(mask uint64) Modifier {
	return OSMaskTable.Decode(mask)
}

// FromLegacyModifierMask decodes a Carbon modifier mask.
func FromLegacyModifierMask(mask uint32) Modifier {
	return LegacyMaskTable.Decode(uint64(mask))
}

// OSMask returns m in the NSEvent layout.
func (m Modifier) OSMask() uint64 {
	return OSMaskTable.Encode(m)
}

// LegacyMask returns m in the Carbon layout.
func (m Modifier) LegacyMask() uint32 {
	return uint32(LegacyMaskTable.Encode(m))
}
