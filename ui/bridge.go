package ui

import (
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aouyang1/magicframe/api/models"
)

var ErrNotRunning = errors.New("frame program is not running")

// Bridge lets other goroutines, like the control API, reach the running program. Reads come from
// the published status, changes are sent into the event loop as messages.
type Bridge struct {
	status *Status

	mu      sync.RWMutex
	program *tea.Program
}

func NewBridge(status *Status) *Bridge {
	return &Bridge{status: status}
}

// Attach connects the bridge to the program it forwards to
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.program = p
}

func (b *Bridge) Status() models.StatusResponse {
	return b.status.Snapshot()
}

func (b *Bridge) RequestSync() error {
	return b.send(SyncRequestMsg{})
}

func (b *Bridge) ReloadSettings() error {
	return b.send(SettingsChangedMsg{})
}

func (b *Bridge) send(msg tea.Msg) error {
	b.mu.RLock()
	p := b.program
	b.mu.RUnlock()
	if p == nil {
		return ErrNotRunning
	}
	p.Send(msg)
	return nil
}
