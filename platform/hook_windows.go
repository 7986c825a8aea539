//go:build windows

package platform

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"markestedt/dictbar/hotkey"
)

var (
	user32              = windows.NewLazySystemDLL("user32.dll")
	setWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	callNextHookEx      = user32.NewProc("CallNextHookEx")
	unhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	peekMessage         = user32.NewProc("PeekMessageW")
	getAsyncKeyState    = user32.NewProc("GetAsyncKeyState")
)

const (
	whKeyboardLL  = 13
	whMouseLL     = 14
	wmKeydown     = 0x0100
	wmSyskeydown  = 0x0104
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	pmRemove      = 0x0001
)

const (
	vkShift = 0x10
	vkCtrl  = 0x11
	vkAlt   = 0x12
	vkLwin  = 0x5B // Left Windows key
	vkRwin  = 0x5C // Right Windows key
)

type kbdllhookstruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

// vkLabels names the virtual keys that have a macOS counterpart, so a
// combination persisted on one platform matches on the other.
var vkLabels = map[uint32]string{
	0x20: "Space", 0x0D: "Return", 0x1B: "Escape", 0x09: "Tab", 0x08: "Delete",
	0x2E: "Forward Delete", 0x24: "Home", 0x23: "End", 0x21: "Page Up", 0x22: "Page Down",
	0x25: "Left", 0x26: "Up", 0x27: "Right", 0x28: "Down",
	0xBC: ",", 0xBE: ".", 0xBF: "/", 0xBA: ";", 0xDE: "'", 0xDB: "[", 0xDD: "]",
	0xDC: "\\", 0xBD: "-", 0xBB: "=", 0xC0: "`",
}

var vkToKeyCode = make(map[uint32]hotkey.KeyCode)

func init() {
	for vk := uint32('A'); vk <= 'Z'; vk++ {
		vkLabels[vk] = string(rune(vk))
	}
	for vk := uint32('0'); vk <= '9'; vk++ {
		vkLabels[vk] = string(rune(vk))
	}
	for i := uint32(0); i < 12; i++ {
		vkLabels[0x70+i] = fmt.Sprintf("F%d", i+1)
	}
	for vk, label := range vkLabels {
		if code, ok := hotkey.KeyCodeForLabel(label); ok {
			vkToKeyCode[vk] = code
		}
	}
}

// winHooks runs the low-level keyboard and mouse hooks on one locked OS
// thread for the lifetime of the process.
type winHooks struct {
	once     sync.Once
	startErr error
	subs     *listeners
}

var sharedHooks = &winHooks{subs: newListeners()}

func (h *winHooks) start() error {
	h.once.Do(func() {
		errCh := make(chan error, 1)
		go h.runHooks(errCh)
		h.startErr = <-errCh
	})
	return h.startErr
}

func (h *winHooks) runHooks(errCh chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	keyboardProc := func(nCode int32, wParam uintptr, lParam uintptr) uintptr {
		if nCode >= 0 && (wParam == wmKeydown || wParam == wmSyskeydown) {
			kbInfo := (*kbdllhookstruct)(unsafe.Pointer(lParam))
			h.handleKeyDown(kbInfo)
		}
		r, _, _ := callNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
		return r
	}
	mouseProc := func(nCode int32, wParam uintptr, lParam uintptr) uintptr {
		if nCode >= 0 && (wParam == wmLButtonDown || wParam == wmLButtonUp) {
			h.subs.emitClick()
		}
		r, _, _ := callNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
		return r
	}

	keyboardHook, _, err := setWindowsHookEx.Call(whKeyboardLL, windows.NewCallback(keyboardProc), 0, 0)
	if keyboardHook == 0 {
		errCh <- fmt.Errorf("SetWindowsHookEx keyboard failed: %w", err)
		return
	}
	mouseHook, _, err := setWindowsHookEx.Call(whMouseLL, windows.NewCallback(mouseProc), 0, 0)
	if mouseHook == 0 {
		unhookWindowsHookEx.Call(keyboardHook)
		errCh <- fmt.Errorf("SetWindowsHookEx mouse failed: %w", err)
		return
	}

	errCh <- nil

	// Hook callbacks are delivered while this thread pumps messages.
	var m msg
	for {
		r, _, _ := peekMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
		if r != 0 {
			continue
		}
		// Small sleep to prevent busy loop
		time.Sleep(5 * time.Millisecond)
	}
}

func (h *winHooks) handleKeyDown(kbInfo *kbdllhookstruct) {
	code, ok := vkToKeyCode[kbInfo.vkCode]
	if !ok {
		return
	}

	var mods hotkey.Modifier
	if isKeyPressed(vkShift) {
		mods |= hotkey.Shift
	}
	if isKeyPressed(vkCtrl) {
		mods |= hotkey.Control
	}
	if isKeyPressed(vkAlt) {
		mods |= hotkey.Option
	}
	if isKeyPressed(vkLwin) || isKeyPressed(vkRwin) {
		mods |= hotkey.Command
	}
	h.subs.emitKey(hotkey.New(code, mods))
}

func isKeyPressed(vk int) bool {
	r, _, _ := getAsyncKeyState.Call(uintptr(vk))
	return r&0x8000 != 0
}

type hookKeyTap struct{ hooks *winHooks }

func newHookKeyTap() hotkey.KeyTap { return &hookKeyTap{hooks: sharedHooks} }

// Listen delivers every key press; the target is matched by the caller.
func (t *hookKeyTap) Listen(ctx context.Context, _ hotkey.Combo) (<-chan hotkey.Combo, error) {
	if err := t.hooks.start(); err != nil {
		return nil, err
	}
	return t.hooks.subs.addKeys(ctx, nil), nil
}

type hookClickTap struct{ hooks *winHooks }

func newHookClickTap() hotkey.ClickTap { return &hookClickTap{hooks: sharedHooks} }

func (t *hookClickTap) Listen(ctx context.Context) (<-chan struct{}, error) {
	if err := t.hooks.start(); err != nil {
		return nil, err
	}
	return t.hooks.subs.addClicks(ctx, nil), nil
}
