package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aouyang1/magicframe/ui/styles"
)

// every non slideshow view is drawn at this offset from the top left corner
const (
	padTop  = 1
	padLeft = 2
)

var pageStyle = lipgloss.NewStyle().Padding(padTop, padLeft)

func (a *App) View() string {
	switch a.state.View {
	case ViewSlideshow:
		return a.slideshowView()
	case ViewLogin:
		return pageStyle.Render(a.loginView())
	case ViewWifi:
		return pageStyle.Render(a.wifiView())
	default:
		return pageStyle.Render(a.menuView())
	}
}

func (a *App) messageView() string {
	if a.state.Message == "" {
		return ""
	}
	if a.state.IsError {
		return styles.ErrorStyle.Render(a.state.Message)
	}
	return styles.MessageStyle.Render(a.state.Message)
}

// stack joins the non-empty blocks top to bottom
func stack(blocks ...string) string {
	var kept []string
	for _, b := range blocks {
		if b != "" {
			kept = append(kept, b)
		}
	}
	return strings.Join(kept, "\n")
}

func (a *App) menuView() string {
	title := styles.TitleStyle.Render("Magic Photo Frame")
	a.menuTop = padTop + lipgloss.Height(title)

	items := make([]string, len(menuLabels))
	for i, label := range menuLabels {
		if i == a.menuIndex {
			items[i] = styles.SelectedItemStyle.Render(label)
		} else {
			items[i] = styles.ItemStyle.Render(label)
		}
	}

	account := "Not logged in"
	if a.state.Session != nil {
		account = fmt.Sprintf("Logged in as %s", a.state.Session.Username)
	}

	return stack(
		title,
		strings.Join(items, "\n"),
		styles.HelpStyle.Render(account),
		a.messageView(),
		styles.HelpStyle.Render("↑/↓ select • enter choose • ctrl+c quit"),
	)
}

func inputBox(ti string, focused bool) string {
	if focused {
		return styles.FocusedInputStyle.Render(ti)
	}
	return styles.InputStyle.Render(ti)
}

func (a *App) loginView() string {
	title := styles.TitleStyle.Render("Login")
	userLabel := styles.TextStyle.Render("Username:")
	userBox := inputBox(a.username.View(), a.username.Focused())
	passLabel := styles.TextStyle.Render("Password:")
	passBox := inputBox(a.password.View(), a.password.Focused())

	a.usernameTop = padTop + lipgloss.Height(title) + lipgloss.Height(userLabel)
	a.passwordTop = a.usernameTop + lipgloss.Height(userBox) + lipgloss.Height(passLabel)

	above := stack(title, userLabel, userBox, passLabel, passBox, a.messageView())
	a.keyboard.SetOrigin(padLeft, padTop+lipgloss.Height(above))

	return stack(
		above,
		a.keyboard.View(),
		styles.HelpStyle.Render("tab switch field • enter next/login • ctrl+k keyboard • esc back"),
	)
}

func (a *App) wifiView() string {
	title := styles.TitleStyle.Render("WiFi Setup")
	a.listTop = padTop + lipgloss.Height(title)

	var list string
	if len(a.wifi.networks) == 0 {
		list = styles.MutedStyle.Render("No networks")
	} else {
		rows := make([]string, len(a.wifi.networks))
		for i, ssid := range a.wifi.networks {
			if i == a.wifi.selected {
				rows[i] = styles.SelectedItemStyle.Render(ssid)
			} else {
				rows[i] = styles.ItemStyle.Render(ssid)
			}
		}
		list = strings.Join(rows, "\n")
	}

	var entry string
	if a.wifi.entering {
		entry = stack(styles.TextStyle.Render("Password:"), inputBox(a.wifi.password.View(), true))
	}
	status := styles.MessageStyle.Render(a.wifi.status)

	above := stack(title, list, entry, status)
	a.keyboard.SetOrigin(padLeft, padTop+lipgloss.Height(above))

	help := "↑/↓ select • enter connect • r rescan • esc back"
	if a.wifi.entering {
		help = "enter connect • ctrl+k keyboard • esc cancel"
	}
	return stack(above, a.keyboard.View(), styles.HelpStyle.Render(help))
}

func (a *App) slideshowView() string {
	f, ok := a.display.(framer)
	if !ok {
		// an external viewer owns the screen
		return ""
	}
	frame := f.Frame()
	if a.state.Message == "" {
		return frame
	}

	// the bottom row of the frame gives way to the message
	style := styles.MessageStyle
	if a.state.IsError {
		style = styles.ErrorStyle
	}
	lines := strings.Split(frame, "\n")
	lines[len(lines)-1] = style.MarginTop(0).Render(a.state.Message)
	return strings.Join(lines, "\n")
}
