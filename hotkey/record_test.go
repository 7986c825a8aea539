package hotkey

import (
	"encoding/json"
	"testing"
)

func TestPersistedRoundTrip(t *testing.T) {
	keys := []KeyCode{KeyA, KeySpace, KeyEscape, KeyComma, KeyF12, KeyCode(0x7F)}
	for _, key := range keys {
		for _, mods := range allSubsets() {
			c := New(key, mods)
			if got := FromPersisted(c.Persisted()); got != c {
				t.Errorf("FromPersisted(%v.Persisted()) = %+v", c, got)
			}
		}
	}
}

func TestPersistedRoundTripThroughJSON(t *testing.T) {
	c := New(KeyD, Shift|Command)
	data, err := json.Marshal(c.Persisted())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got := FromPersisted(r); got != c {
		t.Errorf("JSON round trip = %+v, want %+v", got, c)
	}
}

func TestPersistedWritesOnlyNewFields(t *testing.T) {
	r := New(KeyA, Shift).Persisted()
	if len(r) != 2 {
		t.Fatalf("Persisted() has %d fields, want 2: %v", len(r), r)
	}
	if r["keyCode"] != int64(KeyA) || r["modifier"] != int64(Shift) {
		t.Errorf("Persisted() = %v", r)
	}
}

func TestFromPersisted(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   Combo
	}{
		{
			name:   "nil gives default",
			record: nil,
			want:   New(KeySpace, Option|Command),
		},
		{
			name:   "modern form",
			record: Record{"keyCode": int64(KeyD), "modifier": int64(Control | Option)},
			want:   New(KeyD, Control|Option),
		},
		{
			name:   "modern form from JSON floats",
			record: Record{"keyCode": float64(KeyA), "modifier": float64(Command)},
			want:   New(KeyA, Command),
		},
		{
			name:   "unknown modifier bits dropped",
			record: Record{"keyCode": int64(KeyA), "modifier": int64(Shift | 1<<7)},
			want:   New(KeyA, Shift),
		},
		{
			name:   "legacy shift and command",
			record: Record{"shift": true, "command": true},
			want:   New(KeySpace, Shift|Command),
		},
		{
			name:   "legacy with key code",
			record: Record{"keyCode": 2, "control": true, "option": true},
			want:   New(KeyD, Control|Option),
		},
		{
			name:   "legacy fields count by presence",
			record: Record{"shift": false, "command": false},
			want:   New(KeySpace, Shift|Command),
		},
		{
			name:   "legacy absent fields contribute nothing",
			record: Record{"control": true},
			want:   New(KeySpace, Control),
		},
		{
			name:   "legacy non-boolean fields ignored",
			record: Record{"shift": 1, "option": "yes", "command": true},
			want:   New(KeySpace, Command),
		},
		{
			name:   "modern field wins over legacy",
			record: Record{"modifier": int64(Option), "shift": true, "command": true},
			want:   New(KeySpace, Option),
		},
		{
			name:   "non-numeric modifier falls back to legacy",
			record: Record{"modifier": "broken", "shift": true},
			want:   New(KeySpace, Shift),
		},
		{
			name:   "empty record",
			record: Record{},
			want:   New(KeySpace, NoModifiers),
		},
		{
			name:   "bad key code ignored",
			record: Record{"keyCode": "A", "modifier": int64(Command)},
			want:   New(KeySpace, Command),
		},
		{
			name:   "out of range key code ignored",
			record: Record{"keyCode": int64(1 << 20), "modifier": int64(Command)},
			want:   New(KeySpace, Command),
		},
		{
			name:   "fractional key code ignored",
			record: Record{"keyCode": 2.5, "modifier": int64(Command)},
			want:   New(KeySpace, Command),
		},
		{
			name:   "modifier at 2^63 is not an integer",
			record: Record{"modifier": float64(1 << 63), "shift": true},
			want:   New(KeySpace, Shift),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromPersisted(tt.record); got != tt.want {
				t.Errorf("FromPersisted(%v) = %+v (%s), want %+v (%s)", tt.record, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestFromPersistedNilEqualsDefault(t *testing.T) {
	if FromPersisted(nil) != Default {
		t.Error("FromPersisted(nil) != Default")
	}
	if Default != New(KeySpace, Option|Command) {
		t.Error("Default is not Option + Command + Space")
	}
}

func TestAsIntFloatBounds(t *testing.T) {
	tests := []struct {
		in     float64
		want   int64
		wantOK bool
	}{
		{0, 0, true},
		{-1 << 63, -1 << 63, true},
		{1 << 62, 1 << 62, true},
		{1 << 63, 0, false},
		{-1 << 64, 0, false},
	}
	for _, tt := range tests {
		got, ok := asInt(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("asInt(%g) = %d, %v, want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
