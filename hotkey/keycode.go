package hotkey

import "strings"

// KeyCode is a macOS virtual key code (ANSI layout).
type KeyCode uint16

const (
	KeyA            KeyCode = 0x00
	KeyS            KeyCode = 0x01
	KeyD            KeyCode = 0x02
	KeyF            KeyCode = 0x03
	KeyH            KeyCode = 0x04
	KeyG            KeyCode = 0x05
	KeyZ            KeyCode = 0x06
	KeyX            KeyCode = 0x07
	KeyC            KeyCode = 0x08
	KeyV            KeyCode = 0x09
	KeyB            KeyCode = 0x0B
	KeyQ            KeyCode = 0x0C
	KeyW            KeyCode = 0x0D
	KeyE            KeyCode = 0x0E
	KeyR            KeyCode = 0x0F
	KeyY            KeyCode = 0x10
	KeyT            KeyCode = 0x11
	Key1            KeyCode = 0x12
	Key2            KeyCode = 0x13
	Key3            KeyCode = 0x14
	Key4            KeyCode = 0x15
	Key6            KeyCode = 0x16
	Key5            KeyCode = 0x17
	KeyEqual        KeyCode = 0x18
	Key9            KeyCode = 0x19
	Key7            KeyCode = 0x1A
	KeyMinus        KeyCode = 0x1B
	Key8            KeyCode = 0x1C
	Key0            KeyCode = 0x1D
	KeyRightBracket KeyCode = 0x1E
	KeyO            KeyCode = 0x1F
	KeyU            KeyCode = 0x20
	KeyLeftBracket  KeyCode = 0x21
	KeyI            KeyCode = 0x22
	KeyP            KeyCode = 0x23
	KeyReturn       KeyCode = 0x24
	KeyL            KeyCode = 0x25
	KeyJ            KeyCode = 0x26
	KeyQuote        KeyCode = 0x27
	KeyK            KeyCode = 0x28
	KeySemicolon    KeyCode = 0x29
	KeyBackslash    KeyCode = 0x2A
	KeyComma        KeyCode = 0x2B
	KeySlash        KeyCode = 0x2C
	KeyN            KeyCode = 0x2D
	KeyM            KeyCode = 0x2E
	KeyPeriod       KeyCode = 0x2F
	KeyTab          KeyCode = 0x30
	KeySpace        KeyCode = 0x31
	KeyGrave        KeyCode = 0x32
	KeyDelete       KeyCode = 0x33
	KeyEscape       KeyCode = 0x35
	KeyF5           KeyCode = 0x60
	KeyF6           KeyCode = 0x61
	KeyF7           KeyCode = 0x62
	KeyF3           KeyCode = 0x63
	KeyF8           KeyCode = 0x64
	KeyF9           KeyCode = 0x65
	KeyF11          KeyCode = 0x67
	KeyF10          KeyCode = 0x6D
	KeyF12          KeyCode = 0x6F
	KeyHome         KeyCode = 0x73
	KeyPageUp       KeyCode = 0x74
	KeyForwardDel   KeyCode = 0x75
	KeyF4           KeyCode = 0x76
	KeyEnd          KeyCode = 0x77
	KeyF2           KeyCode = 0x78
	KeyPageDown     KeyCode = 0x79
	KeyF1           KeyCode = 0x7A
	KeyLeft         KeyCode = 0x7B
	KeyRight        KeyCode = 0x7C
	KeyDown         KeyCode = 0x7D
	KeyUp           KeyCode = 0x7E
)

type keyInfo struct {
	code  KeyCode
	label string
	dom   string // KeyboardEvent.code
}

var keyTable = []keyInfo{
	{KeyA, "A", "KeyA"}, {KeyB, "B", "KeyB"}, {KeyC, "C", "KeyC"}, {KeyD, "D", "KeyD"},
	{KeyE, "E", "KeyE"}, {KeyF, "F", "KeyF"}, {KeyG, "G", "KeyG"}, {KeyH, "H", "KeyH"},
	{KeyI, "I", "KeyI"}, {KeyJ, "J", "KeyJ"}, {KeyK, "K", "KeyK"}, {KeyL, "L", "KeyL"},
	{KeyM, "M", "KeyM"}, {KeyN, "N", "KeyN"}, {KeyO, "O", "KeyO"}, {KeyP, "P", "KeyP"},
	{KeyQ, "Q", "KeyQ"}, {KeyR, "R", "KeyR"}, {KeyS, "S", "KeyS"}, {KeyT, "T", "KeyT"},
	{KeyU, "U", "KeyU"}, {KeyV, "V", "KeyV"}, {KeyW, "W", "KeyW"}, {KeyX, "X", "KeyX"},
	{KeyY, "Y", "KeyY"}, {KeyZ, "Z", "KeyZ"},

	{Key0, "0", "Digit0"}, {Key1, "1", "Digit1"}, {Key2, "2", "Digit2"}, {Key3, "3", "Digit3"},
	{Key4, "4", "Digit4"}, {Key5, "5", "Digit5"}, {Key6, "6", "Digit6"}, {Key7, "7", "Digit7"},
	{Key8, "8", "Digit8"}, {Key9, "9", "Digit9"},

	{KeyEqual, "=", "Equal"}, {KeyMinus, "-", "Minus"},
	{KeyLeftBracket, "[", "BracketLeft"}, {KeyRightBracket, "]", "BracketRight"},
	{KeyQuote, "'", "Quote"}, {KeySemicolon, ";", "Semicolon"}, {KeyBackslash, "\\", "Backslash"},
	{KeyComma, ",", "Comma"}, {KeySlash, "/", "Slash"}, {KeyPeriod, ".", "Period"},
	{KeyGrave, "`", "Backquote"},

	{KeyReturn, "Return", "Enter"}, {KeyTab, "Tab", "Tab"}, {KeySpace, "Space", "Space"},
	{KeyDelete, "Delete", "Backspace"}, {KeyForwardDel, "Forward Delete", "Delete"},
	{KeyEscape, "Escape", "Escape"},
	{KeyHome, "Home", "Home"}, {KeyEnd, "End", "End"},
	{KeyPageUp, "Page Up", "PageUp"}, {KeyPageDown, "Page Down", "PageDown"},
	{KeyLeft, "Left", "ArrowLeft"}, {KeyRight, "Right", "ArrowRight"},
	{KeyDown, "Down", "ArrowDown"}, {KeyUp, "Up", "ArrowUp"},

	{KeyF1, "F1", "F1"}, {KeyF2, "F2", "F2"}, {KeyF3, "F3", "F3"}, {KeyF4, "F4", "F4"},
	{KeyF5, "F5", "F5"}, {KeyF6, "F6", "F6"}, {KeyF7, "F7", "F7"}, {KeyF8, "F8", "F8"},
	{KeyF9, "F9", "F9"}, {KeyF10, "F10", "F10"}, {KeyF11, "F11", "F11"}, {KeyF12, "F12", "F12"},
}

var (
	labelsByCode = make(map[KeyCode]string, len(keyTable))
	codesByLabel = make(map[string]KeyCode, len(keyTable))
	codesByDOM   = make(map[string]KeyCode, len(keyTable))
)

// Aliases accepted by KeyCodeForLabel in addition to the display labels.
var labelAliases = map[string]KeyCode{
	" ":      KeySpace,
	"esc":    KeyEscape,
	"enter":  KeyReturn,
	"comma":  KeyComma,
	"period": KeyPeriod,
}

func init() {
	for _, k := range keyTable {
		labelsByCode[k.code] = k.label
		codesByLabel[strings.ToLower(k.label)] = k.code
		codesByDOM[k.dom] = k.code
	}
	for alias, code := range labelAliases {
		codesByLabel[alias] = code
	}
}

// Label returns the display label of the key, if known.
func (k KeyCode) Label() (string, bool) {
	label, ok := labelsByCode[k]
	return label, ok
}

// Digit returns the number-row digit the key produces. macOS key codes
// for the digit row are not in numeric order.
func (k KeyCode) Digit() (int, bool) {
	label, ok := labelsByCode[k]
	if !ok || len(label) != 1 || label[0] < '0' || label[0] > '9' {
		return 0, false
	}
	return int(label[0] - '0'), true
}

// KeyCodeForLabel resolves a label such as "a", "Space" or "," to a key
// code. Matching is case-insensitive.
func KeyCodeForLabel(label string) (KeyCode, bool) {
	if code, ok := codesByLabel[label]; ok {
		return code, true
	}
	code, ok := codesByLabel[strings.ToLower(strings.TrimSpace(label))]
	return code, ok
}

// KeyCodeForDOMCode resolves a browser KeyboardEvent.code value.
func KeyCodeForDOMCode(code string) (KeyCode, bool) {
	k, ok := codesByDOM[code]
	return k, ok
}
