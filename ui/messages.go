package ui

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aouyang1/magicframe/session"
	"github.com/aouyang1/magicframe/slideshow"
	"github.com/aouyang1/magicframe/store"
)

const (
	// wait before skipping an image that failed to load
	skipDelay = 100 * time.Millisecond

	wifiTimeout = 30 * time.Second
)

type loadPurpose int

const (
	startOnline loadPurpose = iota
	startOffline
	reload
)

// Message types for async operations
type (
	settingsLoadedMsg struct {
		settings *store.AppSettings
		err      error
	}

	tokenVerifiedMsg struct {
		err error
	}

	loginMsg struct {
		session *session.Session
		err     error
		saveErr error
	}

	logoutMsg struct {
		message string
		err     error
		saveErr error
	}

	imagesLoadedMsg struct {
		purpose loadPurpose
		images  []string
		err     error
	}

	// frameShownMsg reports the result of putting an image on screen
	frameShownMsg struct {
		gen  int
		path string
		err  error
	}

	// advanceMsg fires when the current image has been up long enough
	advanceMsg struct {
		gen int
	}

	pollTickMsg struct {
		gen int
	}

	polledMsg struct {
		gen       int
		scheduled bool

		// start marks the poll that runs before an online slideshow first loads
		start bool
		added []string
		err   error
		at    time.Time
	}

	scannedMsg struct {
		networks []string
		err      error
	}

	connectedMsg struct {
		ssid string
		err  error
	}

	// SyncRequestMsg asks for an immediate poll outside the regular interval
	SyncRequestMsg struct{}

	// SettingsChangedMsg asks the app to re-read the persisted settings
	SettingsChangedMsg struct{}
)

func loadSettingsCmd(settings Settings) tea.Cmd {
	return func() tea.Msg {
		s, err := settings.GetAppSettings()
		return settingsLoadedMsg{settings: s, err: err}
	}
}

func verifyTokenCmd(ctx context.Context, auth Auth, token string) tea.Cmd {
	return func() tea.Msg {
		return tokenVerifiedMsg{err: auth.VerifyToken(ctx, token)}
	}
}

// loginCmd logs in and persists the new session
func loginCmd(ctx context.Context, auth Auth, sessionPath, username, password string) tea.Cmd {
	return func() tea.Msg {
		sess, err := auth.Login(ctx, username, password)
		if err != nil {
			return loginMsg{err: err}
		}
		return loginMsg{session: sess, saveErr: session.Save(sessionPath, sess)}
	}
}

// logoutCmd logs out server side. The session file is cleared on success and when the server
// could not be reached, but not when the server refused.
func logoutCmd(ctx context.Context, auth Auth, sessionPath, token string) tea.Cmd {
	return func() tea.Msg {
		message, err := auth.Logout(ctx, token)
		if err != nil && isRefusal(err) {
			return logoutMsg{err: err}
		}
		return logoutMsg{message: message, err: err, saveErr: session.Clear(sessionPath)}
	}
}

func loadImagesCmd(lib Library, purpose loadPurpose, shuffle bool, seed int64) tea.Cmd {
	return func() tea.Msg {
		var images []string
		var err error
		if shuffle {
			images, err = lib.Shuffled(rand.New(rand.NewSource(seed)))
		} else {
			images, err = lib.List()
		}
		return imagesLoadedMsg{purpose: purpose, images: images, err: err}
	}
}

func showFrameCmd(ctx context.Context, display slideshow.Display, gen int, path string) tea.Cmd {
	return func() tea.Msg {
		img, err := slideshow.Load(path)
		if err == nil {
			err = display.Show(ctx, img)
		}
		return frameShownMsg{gen: gen, path: path, err: err}
	}
}

func closeDisplayCmd(display slideshow.Display) tea.Cmd {
	return func() tea.Msg {
		if err := display.Close(); err != nil {
			slog.Warn("error closing display", "error", err)
		}
		return nil
	}
}

func advanceAfter(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return advanceMsg{gen: gen}
	})
}

func pollAfter(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return pollTickMsg{gen: gen}
	})
}

func pollCmd(ctx context.Context, poller Poller, token string, gen int, scheduled, start bool) tea.Cmd {
	return func() tea.Msg {
		added, err := poller.CheckForNew(ctx, token)
		return polledMsg{gen: gen, scheduled: scheduled, start: start, added: added, err: err, at: time.Now()}
	}
}

func scanCmd(ctx context.Context, networks Networks) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, wifiTimeout)
		defer cancel()
		found, err := networks.Scan(ctx)
		return scannedMsg{networks: found, err: err}
	}
}

func connectCmd(ctx context.Context, networks Networks, ssid, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, wifiTimeout)
		defer cancel()
		return connectedMsg{ssid: ssid, err: networks.Connect(ctx, ssid, password)}
	}
}
