// Package wifi scans for nearby networks and writes the wpa_supplicant configuration for one
package wifi

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

var ErrNoSSID = errors.New("no network selected")

// Runner executes a system command and returns its standard output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands on the host
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

type Manager struct {
	runner Runner

	Interface string
	Country   string
	// ConfPath is the wpa_supplicant configuration the system network manager reads
	ConfPath string
	// TempDir receives the generated file before it is copied into place
	TempDir string
}

func NewManager(runner Runner, iface, country, confPath string) *Manager {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Manager{
		runner:    runner,
		Interface: iface,
		Country:   country,
		ConfPath:  confPath,
		TempDir:   os.TempDir(),
	}
}

// Scan lists the networks in range, in the order the scan reported them
func (m *Manager) Scan(ctx context.Context) ([]string, error) {
	out, err := m.runner.Run(ctx, "sudo", "iwlist", m.Interface, "scan")
	if err != nil {
		return nil, fmt.Errorf("error scanning: %w", err)
	}
	return ParseESSIDs(string(out)), nil
}

// ParseESSIDs extracts network names from iwlist scan output. The first occurrence of each name is
// kept, hidden (empty) names are dropped.
func ParseESSIDs(output string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	var networks []string
	for _, line := range strings.Split(output, "\n") {
		_, rest, ok := strings.Cut(line, `ESSID:"`)
		if !ok {
			continue
		}
		ssid := rest
		if i := strings.LastIndex(rest, `"`); i >= 0 {
			ssid = rest[:i]
		}
		if ssid == "" || seen.Contains(ssid) {
			continue
		}
		seen.Add(ssid)
		networks = append(networks, ssid)
	}
	return networks
}

// Connect writes a configuration holding only this network and asks wpa_supplicant to reload it.
// Whether the frame actually associates is not checked.
func (m *Manager) Connect(ctx context.Context, ssid, password string) error {
	if ssid == "" {
		return ErrNoSSID
	}
	if err := validatePassphrase(password); err != nil {
		return err
	}

	tmpPath := filepath.Join(m.TempDir, "wpa_supplicant.conf")
	if err := os.WriteFile(tmpPath, []byte(RenderConfig(ssid, password, m.Country)), 0o600); err != nil {
		return fmt.Errorf("unable to write network configuration: %w", err)
	}
	defer os.Remove(tmpPath)

	if _, err := m.runner.Run(ctx, "sudo", "cp", tmpPath, m.ConfPath); err != nil {
		return fmt.Errorf("unable to install network configuration: %w", err)
	}
	if _, err := m.runner.Run(ctx, "sudo", "wpa_cli", "-i", m.Interface, "reconfigure"); err != nil {
		return fmt.Errorf("unable to reconfigure %s: %w", m.Interface, err)
	}
	return nil
}

// RenderConfig builds the wpa_supplicant.conf contents. An empty password configures an open
// network.
func RenderConfig(ssid, password, country string) string {
	var sb strings.Builder
	sb.WriteString("ctrl_interface=DIR=/var/run/wpa_supplicant GROUP=netdev\n")
	sb.WriteString("update_config=1\n")
	fmt.Fprintf(&sb, "country=%s\n\n", country)
	sb.WriteString("network={\n")
	fmt.Fprintf(&sb, "    ssid=%s\n", quoteOrHex(ssid))
	if password == "" {
		sb.WriteString("    key_mgmt=NONE\n")
	} else {
		fmt.Fprintf(&sb, "    psk=\"%s\"\n", password)
		sb.WriteString("    key_mgmt=WPA-PSK\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}

// quoteOrHex quotes an ssid. A quoted value ends at the line end, so names carrying control
// characters are written as hex instead.
func quoteOrHex(v string) string {
	for _, r := range v {
		if r < 0x20 || r == 0x7f {
			return hex.EncodeToString([]byte(v))
		}
	}
	return `"` + v + `"`
}

// validatePassphrase enforces the WPA-PSK passphrase rules, 8 to 63 printable ASCII characters.
// An empty passphrase selects an open network.
func validatePassphrase(p string) error {
	if p == "" {
		return nil
	}
	if len(p) < 8 || len(p) > 63 {
		return fmt.Errorf("password must be between 8 and 63 characters")
	}
	for _, r := range p {
		if r < 0x20 || r > 0x7e {
			return fmt.Errorf("password may only contain printable ASCII characters")
		}
	}
	return nil
}
