package platform

import "markestedt/dictbar/hotkey"

// hookMaskTable is the libuiohook modifier layout used by gohook. Left and
// right keys map to the same flag; libuiohook's META is Command on macOS.
var hookMaskTable = hotkey.MaskTable{
	{Flag: hotkey.Shift, Bits: 1<<0 | 1<<4},
	{Flag: hotkey.Control, Bits: 1<<1 | 1<<5},
	{Flag: hotkey.Option, Bits: 1<<3 | 1<<7},
	{Flag: hotkey.Command, Bits: 1<<2 | 1<<6},
}

// comboFromHook decodes a gohook key event. On macOS the raw code is the
// virtual key code.
func comboFromHook(rawcode, mask uint16) hotkey.Combo {
	return hotkey.Combo{
		Key:       hotkey.KeyCode(rawcode),
		Modifiers: hookMaskTable.Decode(uint64(mask)),
	}
}
