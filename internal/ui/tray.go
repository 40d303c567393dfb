// Package ui provides the desktop system tray for the agent.
package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"
)

type Tray struct {
	logger *slog.Logger

	statusItem   *systray.MenuItem
	sessionsItem *systray.MenuItem
	videosItem   *systray.MenuItem

	mu sync.Mutex

	onQuit func()
}

type TrayConfig struct {
	Logger *slog.Logger
	OnQuit func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		logger: cfg.Logger,
		onQuit: cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Reelcut")
	systray.SetTooltip("Reelcut Agent")

	t.statusItem = systray.AddMenuItem("Status: Ready", "Current agent status")
	t.statusItem.Disable()

	t.sessionsItem = systray.AddMenuItem("Edit sessions: 0", "Open edit sessions")
	t.sessionsItem.Disable()

	t.videosItem = systray.AddMenuItem("Saved videos: 0", "Videos in the catalog")
	t.videosItem.Disable()

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Reelcut Agent")

	go func() {
		for range quitItem.ClickedCh {
			t.logger.Info("quit requested from tray")
			if t.onQuit != nil {
				t.onQuit()
			}
			systray.Quit()
			return
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) UpdateStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.statusItem == nil {
		return
	}
	t.statusItem.SetTitle("Status: " + status)
}

func (t *Tray) UpdateCounts(sessions, videos int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sessionsItem == nil || t.videosItem == nil {
		return
	}
	t.sessionsItem.SetTitle(fmt.Sprintf("Edit sessions: %d", sessions))
	t.videosItem.SetTitle(fmt.Sprintf("Saved videos: %d", videos))
}

func (t *Tray) Quit() {
	systray.Quit()
}
