package ui

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (a *App) openWifi() tea.Cmd {
	a.setView(ViewWifi)

	password := textinput.New()
	password.Placeholder = "network password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 63
	password.Width = 32
	a.wifi = wifiState{password: password}
	return a.scan()
}

func (a *App) scan() tea.Cmd {
	if a.wifi.scanning || a.networks == nil {
		return nil
	}
	a.wifi.scanning = true
	a.wifi.status = "Scanning for networks..."
	return scanCmd(a.ctx, a.networks)
}

func (a *App) handleScanned(msg scannedMsg) tea.Cmd {
	if a.state.View != ViewWifi {
		return nil
	}
	a.wifi.scanning = false
	if msg.err != nil {
		slog.Warn("wifi scan failed", "error", msg.err)
		a.wifi.status = fmt.Sprintf("Error scanning: %v", msg.err)
		return nil
	}
	a.wifi.networks = msg.networks
	a.wifi.selected = 0
	a.wifi.status = fmt.Sprintf("Found %d networks", len(msg.networks))
	return nil
}

func (a *App) selectedNetwork() (string, bool) {
	if a.wifi.selected < 0 || a.wifi.selected >= len(a.wifi.networks) {
		return "", false
	}
	return a.wifi.networks[a.wifi.selected], true
}

// enterPassword asks for the password of the selected network
func (a *App) enterPassword() tea.Cmd {
	ssid, ok := a.selectedNetwork()
	if !ok {
		a.wifi.status = "Please select a network"
		return nil
	}
	a.wifi.entering = true
	a.wifi.password.SetValue("")
	a.wifi.status = fmt.Sprintf("Password for %s", ssid)
	a.keyboard.Attach(ownerWifi, &a.wifi.password)
	return tea.Batch(a.wifi.password.Focus(), textinput.Blink)
}

func (a *App) connectWifi() tea.Cmd {
	if a.wifi.connecting {
		return nil
	}
	ssid, ok := a.selectedNetwork()
	if !ok {
		a.wifi.status = "Please select a network"
		return nil
	}
	password := a.wifi.password.Value()
	a.wifi.entering = false
	a.wifi.password.Blur()
	a.wifi.password.SetValue("")
	a.keyboard.Hide()

	a.wifi.connecting = true
	a.wifi.status = fmt.Sprintf("Connecting to %s...", ssid)
	return connectCmd(a.ctx, a.networks, ssid, password)
}

func (a *App) handleConnected(msg connectedMsg) tea.Cmd {
	a.wifi.connecting = false
	if msg.err != nil {
		slog.Warn("wifi connection failed", "ssid", msg.ssid, "error", msg.err)
		a.wifi.status = fmt.Sprintf("Connection error: %v", msg.err)
		return nil
	}
	slog.Info("wifi configured", "ssid", msg.ssid)
	a.wifi.status = fmt.Sprintf("Connected to %s", msg.ssid)
	return nil
}

func (a *App) updateWifi(msg tea.Msg) tea.Cmd {
	if a.wifi.entering {
		return a.updateWifiPassword(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			a.wifi = wifiState{}
			a.showMenu()
		case "r":
			return a.scan()
		case "up", "k":
			if n := len(a.wifi.networks); n > 0 {
				a.wifi.selected = (a.wifi.selected - 1 + n) % n
			}
		case "down", "j":
			if n := len(a.wifi.networks); n > 0 {
				a.wifi.selected = (a.wifi.selected + 1) % n
			}
		case "enter":
			return a.enterPassword()
		}

	case tea.MouseMsg:
		if !isLeftPress(msg) {
			return nil
		}
		if i := msg.Y - a.listTop; i >= 0 && i < len(a.wifi.networks) {
			a.wifi.selected = i
			return a.enterPassword()
		}
	}
	return nil
}

func (a *App) updateWifiPassword(msg tea.Msg) tea.Cmd {
	if handled, cmd := a.keyboard.Update(msg); handled {
		return cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			a.wifi.entering = false
			a.wifi.password.Blur()
			a.keyboard.Hide()
			a.wifi.status = "Please select a network"
			return nil
		case "ctrl+k":
			if a.keyboard.Visible() {
				a.keyboard.Hide()
			} else {
				a.keyboard.Attach(ownerWifi, &a.wifi.password)
			}
			return nil
		case "enter":
			return a.connectWifi()
		}
	}

	var cmd tea.Cmd
	a.wifi.password, cmd = a.wifi.password.Update(msg)
	return cmd
}
