// Package ui is the kiosk front end: a bubbletea program that walks through the main menu, login,
// Wi-Fi setup and the slideshow
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aouyang1/magicframe/api/client"
	"github.com/aouyang1/magicframe/session"
	"github.com/aouyang1/magicframe/slideshow"
	"github.com/aouyang1/magicframe/store"
	"github.com/aouyang1/magicframe/ui/keyboard"
)

// Auth is the part of the remote client the login flows need
type Auth interface {
	Login(ctx context.Context, username, password string) (*session.Session, error)
	Logout(ctx context.Context, token string) (string, error)
	VerifyToken(ctx context.Context, token string) error
}

// Poller fetches images the frame has not downloaded yet
type Poller interface {
	CheckForNew(ctx context.Context, token string) ([]string, error)
}

// Library lists the local images
type Library interface {
	List() ([]string, error)
	Shuffled(rng *rand.Rand) ([]string, error)
}

type Settings interface {
	GetAppSettings() (*store.AppSettings, error)
}

type Networks interface {
	Scan(ctx context.Context) ([]string, error)
	Connect(ctx context.Context, ssid, password string) error
}

// the terminal backend renders into the program's own view
type framer interface {
	Frame() string
}

type resizer interface {
	SetSize(cols, rows int)
}

type Options struct {
	Auth     Auth
	Poller   Poller
	Library  Library
	Settings Settings
	Networks Networks
	Display  slideshow.Display

	// SessionPath is where the session is persisted
	SessionPath string
	// Session is the identity loaded at startup, nil when logged out
	Session *session.Session
	// AppSettings are the settings to start with, defaults when nil
	AppSettings *store.AppSettings
	// Autostart enters online mode without waiting on the main menu
	Autostart bool
	Status    *Status
	Seed      int64
}

const (
	ownerUsername = "username"
	ownerPassword = "password"
	ownerWifi     = "wifi"
)

type menuItem int

const (
	menuOnline menuItem = iota
	menuOffline
	menuWifi
	menuLogout
)

var menuLabels = []string{"Online Mode", "Offline Mode", "Wi-Fi Settings", "Logout"}

type wifiState struct {
	networks   []string
	selected   int
	password   textinput.Model
	entering   bool
	scanning   bool
	connecting bool
	status     string
}

type App struct {
	ctx context.Context

	auth        Auth
	poller      Poller
	library     Library
	settingsDB  Settings
	networks    Networks
	display     slideshow.Display
	sessionPath string
	status      *Status
	autostart   bool
	rng         *rand.Rand

	state    AppState
	settings store.AppSettings

	// busy blocks new actions while a login, logout or image load is in flight
	busy bool
	// notice is shown once the slideshow has started, setView would clear it earlier
	notice string

	menuIndex int
	username  textinput.Model
	password  textinput.Model
	keyboard  keyboard.Model
	wifi      wifiState

	// generation of the running slideshow and poll timers, bumped on start and stop so that
	// ticks armed before then are dropped
	showGen int
	pollGen int

	width  int
	height int

	// screen lines recorded while rendering, for mouse hit-testing
	menuTop     int
	usernameTop int
	passwordTop int
	listTop     int
}

func New(ctx context.Context, opts Options) *App {
	settings := store.DefaultAppSettings()
	if opts.AppSettings != nil {
		settings = opts.AppSettings
	}
	status := opts.Status
	if status == nil {
		status = &Status{}
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Width = 32

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128
	password.Width = 32

	a := &App{
		ctx:         ctx,
		auth:        opts.Auth,
		poller:      opts.Poller,
		library:     opts.Library,
		settingsDB:  opts.Settings,
		networks:    opts.Networks,
		display:     opts.Display,
		sessionPath: opts.SessionPath,
		status:      status,
		autostart:   opts.Autostart,
		rng:         rand.New(rand.NewSource(seed)),
		settings:    *settings,
		username:    username,
		password:    password,
		keyboard:    keyboard.New(),
	}
	a.state.Session = opts.Session
	a.status.publish(&a.state)
	return a
}

// State returns a copy of the current application state
func (a *App) State() AppState {
	return a.state
}

func (a *App) Status() *Status {
	return a.status
}

func (a *App) Init() tea.Cmd {
	if a.autostart {
		return a.selectMenu(menuOnline)
	}
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	a.status.publish(&a.state)
	return a, cmd
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		if r, ok := a.display.(resizer); ok {
			r.SetSize(msg.Width, msg.Height)
		}
		return nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.stopSlideshow()
			return tea.Quit
		}

	case settingsLoadedMsg:
		if msg.err != nil {
			slog.Warn("unable to reload settings, keeping current values", "error", msg.err)
			return nil
		}
		a.settings = *msg.settings
		slog.Info("settings reloaded", "slideshow_delay", a.settings.SlideshowDelay(), "poll_interval", a.settings.PollInterval(), "shuffle", a.settings.ShuffleEnabled)
		return nil

	case SettingsChangedMsg:
		if a.settingsDB == nil {
			return nil
		}
		return loadSettingsCmd(a.settingsDB)

	case tokenVerifiedMsg:
		return a.handleTokenVerified(msg)

	case loginMsg:
		return a.handleLogin(msg)

	case logoutMsg:
		return a.handleLogout(msg)

	case imagesLoadedMsg:
		return a.handleImagesLoaded(msg)

	case frameShownMsg:
		return a.handleFrameShown(msg)

	case advanceMsg:
		if msg.gen != a.showGen || !a.state.Slideshow.Running() {
			return nil
		}
		return a.showCurrent()

	case pollTickMsg:
		if msg.gen != a.pollGen || !a.polling() {
			return nil
		}
		return a.pollNow(true)

	case polledMsg:
		return a.handlePolled(msg)

	case SyncRequestMsg:
		if a.state.Session == nil {
			a.state.LastPollErr = session.ErrNoSession
			return nil
		}
		return a.pollNow(false)

	case scannedMsg:
		return a.handleScanned(msg)

	case connectedMsg:
		return a.handleConnected(msg)

	case keyboard.SubmitMsg:
		return a.handleSubmit(msg)
	}

	switch a.state.View {
	case ViewMenu:
		return a.updateMenu(msg)
	case ViewLogin:
		return a.updateLogin(msg)
	case ViewWifi:
		return a.updateWifi(msg)
	case ViewSlideshow:
		return a.updateSlideshow(msg)
	}
	return nil
}

func (a *App) setView(v View) {
	a.state.View = v
	a.state.Message = ""
	a.state.IsError = false
	a.keyboard.Hide()
}

func (a *App) setMessage(msg string) {
	a.state.Message = msg
	a.state.IsError = false
}

func (a *App) setError(msg string) {
	a.state.Message = msg
	a.state.IsError = true
}

func (a *App) showMenu() {
	a.setView(ViewMenu)
}

func (a *App) selectMenu(item menuItem) tea.Cmd {
	a.menuIndex = int(item)
	switch item {
	case menuOnline:
		a.state.Online = true
		if a.state.Session == nil {
			return a.showLogin()
		}
		a.busy = true
		a.setMessage("Checking session...")
		return verifyTokenCmd(a.ctx, a.auth, a.state.Session.Token)

	case menuOffline:
		a.state.Online = false
		a.busy = true
		return a.loadImages(startOffline)

	case menuWifi:
		return a.openWifi()

	case menuLogout:
		if a.state.Session == nil {
			a.setMessage("You are not currently logged in")
			return nil
		}
		a.busy = true
		a.setMessage("Logging out...")
		return logoutCmd(a.ctx, a.auth, a.sessionPath, a.state.Session.Token)
	}
	return nil
}

func (a *App) updateMenu(msg tea.Msg) tea.Cmd {
	if a.busy {
		return nil
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			a.menuIndex = (a.menuIndex - 1 + len(menuLabels)) % len(menuLabels)
		case "down", "j":
			a.menuIndex = (a.menuIndex + 1) % len(menuLabels)
		case "enter", " ":
			return a.selectMenu(menuItem(a.menuIndex))
		}
	case tea.MouseMsg:
		if !isLeftPress(msg) {
			return nil
		}
		if i := msg.Y - a.menuTop; i >= 0 && i < len(menuLabels) {
			return a.selectMenu(menuItem(i))
		}
	}
	return nil
}

func isLeftPress(msg tea.MouseMsg) bool {
	return msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft
}

// describeError turns a remote call failure into the text shown to the user. Server supplied
// messages are shown unmodified.
func describeError(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, client.ErrInvalidResponse):
		return "Invalid response from server"
	default:
		return fmt.Sprintf("Failed to connect to server: %v", err)
	}
}

// isRefusal reports whether the server answered with an error, as opposed to not answering
func isRefusal(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr)
}
