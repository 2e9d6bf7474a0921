package ui

import (
	"sync"
	"time"

	"github.com/aouyang1/magicframe/api/models"
	"github.com/aouyang1/magicframe/session"
	"github.com/aouyang1/magicframe/slideshow"
)

type View int

const (
	ViewMenu View = iota
	ViewLogin
	ViewWifi
	ViewSlideshow
)

func (v View) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewLogin:
		return "login"
	case ViewWifi:
		return "wifi"
	case ViewSlideshow:
		return "slideshow"
	default:
		return "unknown"
	}
}

// AppState is everything the flow controller decides on. It is only touched from the event loop.
type AppState struct {
	// Session is nil when logged out
	Session *session.Session
	// Online is set by choosing online mode and enables polling while the slideshow runs
	Online    bool
	View      View
	Slideshow slideshow.State
	// Shown is the last image put on screen
	Shown string

	Message string
	IsError bool

	LastPoll    time.Time
	LastPollErr error
}

// Status is a copy of the app state that other goroutines may read
type Status struct {
	mu   sync.RWMutex
	snap models.StatusResponse
}

func (s *Status) Snapshot() models.StatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Status) publish(state *AppState) {
	snap := models.StatusResponse{
		LoggedIn:     state.Session != nil,
		Online:       state.Online,
		View:         state.View.String(),
		Running:      state.Slideshow.Running(),
		ImageCount:   state.Slideshow.Len(),
		CurrentImage: state.Shown,
		Message:      state.Message,
	}
	if state.Session != nil {
		snap.Username = state.Session.Username
	}
	if !state.LastPoll.IsZero() {
		snap.LastPoll = state.LastPoll.Format(time.RFC3339)
	}
	if state.LastPollErr != nil {
		snap.LastPollErr = state.LastPollErr.Error()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}
