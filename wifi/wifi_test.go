package wifi

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	output map[string][]byte
	fail   map[string]error

	// contents of the generated file at the time it was copied
	copied string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	key := strings.Join(args, " ")
	if len(args) > 0 && args[0] == "cp" {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return nil, err
		}
		f.copied = string(data)
	}
	for prefix, err := range f.fail {
		if strings.HasPrefix(key, prefix) {
			return nil, err
		}
	}
	for prefix, out := range f.output {
		if strings.HasPrefix(key, prefix) {
			return out, nil
		}
	}
	return nil, nil
}

const scanOutput = `wlan0     Scan completed :
          Cell 01 - Address: AA:BB:CC:DD:EE:01
                    ESSID:"HomeNet"
          Cell 02 - Address: AA:BB:CC:DD:EE:02
                    ESSID:""
          Cell 03 - Address: AA:BB:CC:DD:EE:03
                    ESSID:"Cafe "Free""
          Cell 04 - Address: AA:BB:CC:DD:EE:04
                    ESSID:"HomeNet"
          Cell 05 - Address: AA:BB:CC:DD:EE:05
                    ESSID:"Guest"
`

func TestParseESSIDs(t *testing.T) {
	networks := ParseESSIDs(scanOutput)
	assert.Equal(t, []string{"HomeNet", `Cafe "Free"`, "Guest"}, networks)

	assert.Empty(t, ParseESSIDs(""))
	assert.Empty(t, ParseESSIDs("wlan0     No scan results\n"))
}

func TestScan(t *testing.T) {
	runner := &fakeRunner{output: map[string][]byte{"iwlist wlan0 scan": []byte(scanOutput)}}
	m := NewManager(runner, "wlan0", "US", "/etc/wpa_supplicant/wpa_supplicant.conf")

	networks, err := m.Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, networks, 3)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "sudo", runner.calls[0].name)
	assert.Equal(t, []string{"iwlist", "wlan0", "scan"}, runner.calls[0].args)
}

func TestScanError(t *testing.T) {
	boom := errors.New("device busy")
	runner := &fakeRunner{fail: map[string]error{"iwlist": boom}}
	m := NewManager(runner, "wlan0", "US", "/etc/wpa_supplicant/wpa_supplicant.conf")

	_, err := m.Scan(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "error scanning")
}

func TestConnect(t *testing.T) {
	runner := &fakeRunner{}
	m := NewManager(runner, "wlan0", "DE", "/etc/wpa_supplicant/wpa_supplicant.conf")
	m.TempDir = t.TempDir()

	require.NoError(t, m.Connect(context.Background(), "HomeNet", "hunter2hunter2"))

	tmpPath := filepath.Join(m.TempDir, "wpa_supplicant.conf")
	require.Len(t, runner.calls, 2)
	assert.Equal(t, call{name: "sudo", args: []string{"cp", tmpPath, "/etc/wpa_supplicant/wpa_supplicant.conf"}}, runner.calls[0])
	assert.Equal(t, call{name: "sudo", args: []string{"wpa_cli", "-i", "wlan0", "reconfigure"}}, runner.calls[1])

	assert.Contains(t, runner.copied, "country=DE\n")
	assert.Contains(t, runner.copied, `ssid="HomeNet"`)
	assert.Contains(t, runner.copied, `psk="hunter2hunter2"`)

	// the generated file does not outlive the call
	_, err := os.Stat(tmpPath)
	assert.True(t, os.IsNotExist(err))
}

func TestConnectCopyFailure(t *testing.T) {
	boom := errors.New("permission denied")
	runner := &fakeRunner{fail: map[string]error{"cp": boom}}
	m := NewManager(runner, "wlan0", "US", "/etc/wpa_supplicant/wpa_supplicant.conf")
	m.TempDir = t.TempDir()

	err := m.Connect(context.Background(), "HomeNet", "hunter2hunter2")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	// no reconfigure after a failed install
	assert.Len(t, runner.calls, 1)
}

func TestConnectValidation(t *testing.T) {
	runner := &fakeRunner{}
	m := NewManager(runner, "wlan0", "US", "/etc/wpa_supplicant/wpa_supplicant.conf")
	m.TempDir = t.TempDir()

	assert.ErrorIs(t, m.Connect(context.Background(), "", "hunter2hunter2"), ErrNoSSID)
	assert.Error(t, m.Connect(context.Background(), "HomeNet", "short"))
	assert.Error(t, m.Connect(context.Background(), "HomeNet", strings.Repeat("x", 64)))
	assert.Error(t, m.Connect(context.Background(), "HomeNet", "line\nbreak!"))
	assert.Empty(t, runner.calls)
}

func TestRenderConfig(t *testing.T) {
	t.Run("secured", func(t *testing.T) {
		conf := RenderConfig("HomeNet", "hunter2hunter2", "US")
		expected := "ctrl_interface=DIR=/var/run/wpa_supplicant GROUP=netdev\n" +
			"update_config=1\n" +
			"country=US\n\n" +
			"network={\n" +
			"    ssid=\"HomeNet\"\n" +
			"    psk=\"hunter2hunter2\"\n" +
			"    key_mgmt=WPA-PSK\n" +
			"}\n"
		assert.Equal(t, expected, conf)
	})

	t.Run("open network", func(t *testing.T) {
		conf := RenderConfig("Guest", "", "US")
		assert.Contains(t, conf, "key_mgmt=NONE")
		assert.NotContains(t, conf, "psk=")
	})

	t.Run("control characters in ssid", func(t *testing.T) {
		conf := RenderConfig("a\nb", "", "US")
		assert.Contains(t, conf, "ssid=610a62\n")
	})

	t.Run("quotes in ssid", func(t *testing.T) {
		conf := RenderConfig(`Cafe "Free"`, "", "US")
		assert.Contains(t, conf, `ssid="Cafe "Free""`)
	})
}
