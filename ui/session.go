package ui

import (
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aouyang1/magicframe/api/client"
	"github.com/aouyang1/magicframe/session"
	"github.com/aouyang1/magicframe/ui/keyboard"
)

func (a *App) handleTokenVerified(msg tokenVerifiedMsg) tea.Cmd {
	switch {
	case msg.err == nil:
		return a.startOnlineSession()

	case errors.Is(msg.err, client.ErrUnauthorized):
		slog.Info("saved session rejected by server", "error", msg.err)
		a.busy = false
		a.state.Session = nil
		return tea.Batch(a.clearSession(), a.showLogin())

	default:
		// keep showing something with whatever is already on disk
		slog.Warn("unable to verify session, using local images", "error", msg.err)
		a.notice = describeError(msg.err)
		return a.loadImages(startOnline)
	}
}

func (a *App) clearSession() tea.Cmd {
	path := a.sessionPath
	return func() tea.Msg {
		if err := session.Clear(path); err != nil {
			slog.Error("unable to clear session file", "error", err)
		}
		return nil
	}
}

// startOnlineSession checks for new images first, so a frame without local images has something
// to play, and loads the slideshow once that poll is done
func (a *App) startOnlineSession() tea.Cmd {
	if a.state.Session == nil || a.poller == nil {
		return a.loadImages(startOnline)
	}
	a.setMessage("Checking for new images...")
	return pollCmd(a.ctx, a.poller, a.state.Session.Token, a.pollGen, false, true)
}

func (a *App) showLogin() tea.Cmd {
	a.setView(ViewLogin)
	a.username.SetValue("")
	a.password.SetValue("")
	return a.focusLogin(ownerUsername)
}

// focusLogin moves focus, and with it the on-screen keyboard, to one of the login fields
func (a *App) focusLogin(owner string) tea.Cmd {
	var cmd tea.Cmd
	if owner == ownerPassword {
		a.username.Blur()
		cmd = a.password.Focus()
		a.keyboard.Attach(ownerPassword, &a.password)
	} else {
		a.password.Blur()
		cmd = a.username.Focus()
		a.keyboard.Attach(ownerUsername, &a.username)
	}
	return tea.Batch(cmd, textinput.Blink)
}

func (a *App) focusedLogin() string {
	if a.password.Focused() {
		return ownerPassword
	}
	return ownerUsername
}

func (a *App) submitLogin() tea.Cmd {
	if a.busy {
		return nil
	}
	username, password := a.username.Value(), a.password.Value()
	if username == "" || password == "" {
		a.setError("Please enter username and password")
		return nil
	}
	a.busy = true
	a.setMessage("Logging in...")
	return loginCmd(a.ctx, a.auth, a.sessionPath, username, password)
}

func (a *App) handleLogin(msg loginMsg) tea.Cmd {
	a.busy = false
	if msg.err != nil {
		slog.Warn("login failed", "error", msg.err)
		a.setError(describeError(msg.err))
		return nil
	}
	if msg.saveErr != nil {
		slog.Error("unable to save session", "error", msg.saveErr)
	}
	slog.Info("logged in", "username", msg.session.Username, "user_id", msg.session.UserID)

	a.state.Session = msg.session
	a.state.Online = true
	a.password.SetValue("")
	a.keyboard.Hide()
	a.busy = true
	return a.startOnlineSession()
}

func (a *App) handleLogout(msg logoutMsg) tea.Cmd {
	a.busy = false
	if msg.saveErr != nil {
		slog.Error("unable to clear session file", "error", msg.saveErr)
	}
	if msg.err != nil && isRefusal(msg.err) {
		slog.Warn("logout refused", "error", msg.err)
		a.setError(msg.err.Error())
		return nil
	}

	a.state.Session = nil
	var cmds []tea.Cmd
	if a.state.Slideshow.Running() {
		cmds = append(cmds, a.stopSlideshow())
	}
	cmds = append(cmds, a.showLogin())

	if msg.err != nil {
		slog.Warn("logout request failed, cleared session locally", "error", msg.err)
		a.setError("Logged out locally, but server connection failed")
	} else {
		slog.Info("logged out")
		a.setMessage(msg.message)
	}
	return tea.Batch(cmds...)
}

func (a *App) handleSubmit(msg keyboard.SubmitMsg) tea.Cmd {
	switch {
	case msg.Owner == ownerUsername && a.state.View == ViewLogin:
		return a.focusLogin(ownerPassword)
	case msg.Owner == ownerPassword && a.state.View == ViewLogin:
		return a.submitLogin()
	case msg.Owner == ownerWifi && a.state.View == ViewWifi:
		return a.connectWifi()
	}
	return nil
}

func (a *App) updateLogin(msg tea.Msg) tea.Cmd {
	if a.busy {
		return nil
	}
	if handled, cmd := a.keyboard.Update(msg); handled {
		return cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			a.showMenu()
			return nil
		case "ctrl+k":
			if a.keyboard.Visible() {
				a.keyboard.Hide()
				return nil
			}
			return a.focusLogin(a.focusedLogin())
		case "tab", "shift+tab":
			if a.focusedLogin() == ownerUsername {
				return a.focusLogin(ownerPassword)
			}
			return a.focusLogin(ownerUsername)
		case "enter":
			if a.focusedLogin() == ownerUsername {
				return a.focusLogin(ownerPassword)
			}
			return a.submitLogin()
		}

	case tea.MouseMsg:
		if !isLeftPress(msg) {
			return nil
		}
		// each field is drawn in a three line box
		switch {
		case msg.Y >= a.usernameTop && msg.Y < a.usernameTop+3:
			return a.focusLogin(ownerUsername)
		case msg.Y >= a.passwordTop && msg.Y < a.passwordTop+3:
			return a.focusLogin(ownerPassword)
		}
		return nil
	}

	var cmd tea.Cmd
	if a.password.Focused() {
		a.password, cmd = a.password.Update(msg)
	} else {
		a.username, cmd = a.username.Update(msg)
	}
	return cmd
}
