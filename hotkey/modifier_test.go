package hotkey

import "testing"

// allSubsets returns all 16 combinations of the four flags.
func allSubsets() []Modifier {
	subsets := make([]Modifier, 0, 16)
	for m := Modifier(0); m <= allModifiers; m++ {
		subsets = append(subsets, m)
	}
	return subsets
}

func TestOSMaskBijection(t *testing.T) {
	seen := make(map[uint64]Modifier)
	for _, m := range allSubsets() {
		mask := m.OSMask()
		if got := FromOSModifierMask(mask); got != m {
			t.Errorf("FromOSModifierMask(%#x) = %v, want %v", mask, got, m)
		}
		if prev, dup := seen[mask]; dup {
			t.Errorf("OS mask %#x produced by both %v and %v", mask, prev, m)
		}
		seen[mask] = m
	}
}

func TestLegacyMaskBijection(t *testing.T) {
	seen := make(map[uint32]Modifier)
	for _, m := range allSubsets() {
		mask := m.LegacyMask()
		if got := FromLegacyModifierMask(mask); got != m {
			t.Errorf("FromLegacyModifierMask(%#x) = %v, want %v", mask, got, m)
		}
		if prev, dup := seen[mask]; dup {
			t.Errorf("legacy mask %#x produced by both %v and %v", mask, prev, m)
		}
		seen[mask] = m
	}
}

func TestMaskEncoding(t *testing.T) {
	tests := []struct {
		name   string
		mods   Modifier
		os     uint64
		legacy uint32
	}{
		{"none", NoModifiers, 0, 0},
		{"shift", Shift, 0x20000, 0x0200},
		{"control", Control, 0x40000, 0x1000},
		{"option", Option, 0x80000, 0x0800},
		{"command", Command, 0x100000, 0x0100},
		{"option+command", Option | Command, 0x180000, 0x0900},
		{"all", allModifiers, 0x1E0000, 0x1B00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mods.OSMask(); got != tt.os {
				t.Errorf("OSMask() = %#x, want %#x", got, tt.os)
			}
			if got := tt.mods.LegacyMask(); got != tt.legacy {
				t.Errorf("LegacyMask() = %#x, want %#x", got, tt.legacy)
			}
		})
	}
}

func TestUnknownBitsIgnored(t *testing.T) {
	// Caps lock, numeric pad, function and device-dependent bits.
	const osNoise = 1<<16 | 1<<21 | 1<<23 | 0xFF
	const legacyNoise = 0x0001 | 0x0080 | 0x0400 | 0x2000 | 0x4000

	for _, m := range allSubsets() {
		if got := FromOSModifierMask(m.OSMask() | osNoise); got != m {
			t.Errorf("OS mask with noise decoded to %v, want %v", got, m)
		}
		if got := FromLegacyModifierMask(m.LegacyMask() | legacyNoise); got != m {
			t.Errorf("legacy mask with noise decoded to %v, want %v", got, m)
		}
	}

	if got := FromOSModifierMask(osNoise); got != NoModifiers {
		t.Errorf("noise-only OS mask decoded to %v, want none", got)
	}
}

func TestModifierNamesOrder(t *testing.T) {
	got := (Command | Option | Control | Shift).String()
	want := "Shift + Control + Option + Command"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := NoModifiers.String(); got != "" {
		t.Errorf("empty String() = %q, want empty", got)
	}
}

func TestModifierHas(t *testing.T) {
	m := Shift | Command
	if !m.Has(Shift) || !m.Has(Command) || !m.Has(Shift|Command) {
		t.Error("Has() missed a set flag")
	}
	if m.Has(Option) || m.Has(Shift|Option) || m.Has(NoModifiers) {
		t.Error("Has() reported an unset flag")
	}
}
