// Package systray shows the status-bar item and its menu.
package systray

import (
	"log/slog"
	"os/exec"
	"runtime"
	"sync"

	"github.com/getlantern/systray"
)

// Callbacks are invoked from the menu goroutine.
type Callbacks struct {
	OnOpen        func()
	OnPreferences func()
}

// SystrayManager manages the system tray icon and menu
type SystrayManager struct {
	callbacks Callbacks
	iconData  []byte

	mu          sync.Mutex
	hotkeyItem  *systray.MenuItem
	hotkeyLabel string

	quit     chan struct{}
	quitOnce sync.Once
}

// NewSystrayManager creates a new systray manager
func NewSystrayManager(callbacks Callbacks, iconData []byte) *SystrayManager {
	return &SystrayManager{
		callbacks: callbacks,
		iconData:  iconData,
		quit:      make(chan struct{}),
	}
}

// Run starts the system tray (blocking call)
func (m *SystrayManager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop stops the system tray
func (m *SystrayManager) Stop() {
	systray.Quit()
}

// WaitForQuit returns a channel that will be closed when user clicks Quit
func (m *SystrayManager) WaitForQuit() <-chan struct{} {
	return m.quit
}

// SetHotkeyLabel shows the current shortcut in the menu. It may be called
// before the tray is ready.
func (m *SystrayManager) SetHotkeyLabel(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotkeyLabel = label
	if m.hotkeyItem != nil {
		m.hotkeyItem.SetTitle(hotkeyTitle(label))
	}
}

func hotkeyTitle(label string) string {
	if label == "" {
		return "Shortcut: none"
	}
	return "Shortcut: " + label
}

// onReady is called when the systray is ready
func (m *SystrayManager) onReady() {
	// Set icon
	if len(m.iconData) > 0 {
		systray.SetIcon(m.iconData)
	}

	// Set tooltip
	systray.SetTitle("dictbar")
	systray.SetTooltip("dictbar - Dictionary popover")

	// Add menu items
	mOpen := systray.AddMenuItem("Open", "Show or hide the dictionary popover")

	m.mu.Lock()
	m.hotkeyItem = systray.AddMenuItem(hotkeyTitle(m.hotkeyLabel), "Shortcut that opens the popover")
	m.hotkeyItem.Disable()
	m.mu.Unlock()

	systray.AddSeparator()
	mPrefs := systray.AddMenuItem("Preferences…", "Change the shortcut")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit dictbar")

	// Handle menu clicks
	go func() {
		for {
			select {
			case <-mOpen.ClickedCh:
				if m.callbacks.OnOpen != nil {
					m.callbacks.OnOpen()
				}
			case <-mPrefs.ClickedCh:
				if m.callbacks.OnPreferences != nil {
					m.callbacks.OnPreferences()
				}
			case <-mQuit.ClickedCh:
				slog.Info("User requested quit from system tray")
				m.quitOnce.Do(func() { close(m.quit) })
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when the systray is exiting
func (m *SystrayManager) onExit() {
	slog.Info("System tray exited")
}

// OpenBrowser opens url in the default browser
func OpenBrowser(url string) {
	slog.Info("Opening popover page", "url", url)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		slog.Error("Unsupported platform for opening browser", "platform", runtime.GOOS)
		return
	}

	if err := cmd.Start(); err != nil {
		slog.Error("Failed to open browser", "error", err)
	}
}
