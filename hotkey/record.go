package hotkey

import (
	"encoding/json"
	"math"
)

// Record is the persisted form of a Combo: {"keyCode": int, "modifier": int}.
// Older versions stored one boolean per modifier instead of "modifier";
// FromPersisted still reads those.
type Record map[string]any

const (
	fieldKeyCode  = "keyCode"
	fieldModifier = "modifier"
)

// legacyFields are read only when "modifier" is absent.
var legacyFields = []struct {
	name string
	flag Modifier
}{
	{"shift", Shift},
	{"control", Control},
	{"option", Option},
	{"command", Command},
}

// Persisted returns the record form of c. Legacy fields are never written.
func (c Combo) Persisted() Record {
	return Record{
		fieldKeyCode:  int64(c.Key),
		fieldModifier: int64(c.Modifiers),
	}
}

// FromPersisted decodes a record. A nil record yields Default. The key code
// falls back to Default's key when missing. Modifiers come from "modifier"
// when it is numeric, otherwise from the legacy boolean fields. A legacy
// field sets its flag whenever it holds a boolean, whatever the value;
// with neither form present the set is empty.
func FromPersisted(r Record) Combo {
	if r == nil {
		return Default
	}

	c := Combo{Key: Default.Key}
	if v, ok := asInt(r[fieldKeyCode]); ok && v >= 0 && v <= math.MaxUint16 {
		c.Key = KeyCode(v)
	}

	if v, ok := asInt(r[fieldModifier]); ok {
		c.Modifiers = Modifier(uint64(v)) & allModifiers
		return c
	}

	for _, f := range legacyFields {
		if _, ok := r[f.name].(bool); ok {
			c.Modifiers |= f.flag
		}
	}
	return c
}

// asInt accepts the numeric types TOML, JSON and callers produce.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return floatToInt(f)
		}
	}
	return 0, false
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
