package platform

import (
	"testing"

	"markestedt/dictbar/hotkey"
)

func TestComboFromHook(t *testing.T) {
	tests := []struct {
		name string
		mask uint16
		want hotkey.Modifier
	}{
		{"none", 0, hotkey.NoModifiers},
		{"left shift", 1 << 0, hotkey.Shift},
		{"right shift", 1 << 4, hotkey.Shift},
		{"both shifts", 1<<0 | 1<<4, hotkey.Shift},
		{"left control", 1 << 1, hotkey.Control},
		{"right option", 1 << 7, hotkey.Option},
		{"left meta is command", 1 << 2, hotkey.Command},
		{"right meta is command", 1 << 6, hotkey.Command},
		{"command option", 1<<2 | 1<<3, hotkey.Command | hotkey.Option},
		{"mouse button bits ignored", 1<<8 | 1<<9 | 1<<14, hotkey.NoModifiers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := comboFromHook(uint16(hotkey.KeyD), tt.mask)
			if got.Key != hotkey.KeyD {
				t.Errorf("Key = %v, want KeyD", got.Key)
			}
			if got.Modifiers != tt.want {
				t.Errorf("Modifiers = %v, want %v", got.Modifiers, tt.want)
			}
		})
	}
}
