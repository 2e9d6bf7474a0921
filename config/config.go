// Package config resolves the frame's runtime configuration from MF_* environment variables
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultAPIURL      = "http://212.132.64.123/magicframe/website/api.php"
	DefaultListenAddr  = "0.0.0.0:8080"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultDisplay     = "terminal"

	DefaultWifiInterface = "wlan0"
	DefaultWifiCountry   = "US"
	DefaultWpaConfPath   = "/etc/wpa_supplicant/wpa_supplicant.conf"
)

// Config holds application configuration
type Config struct {
	// RootPath holds the database, log file and rendered frame
	RootPath string
	// ImageDir is the flat local image cache
	ImageDir string
	// SessionFile is the JSON file holding token, user_id and username
	SessionFile string
	DBPath      string
	LogFile     string
	LogLevel    slog.Level

	APIURL      string
	HTTPTimeout time.Duration
	ListenAddr  string

	// Display selects the slideshow backend, "terminal" or "imv"
	Display string
	// DisplayOutput is the wlr-randr output the imv backend sizes frames for and the control API
	// switches on and off
	DisplayOutput string

	WifiInterface string
	WifiCountry   string
	WpaConfPath   string

	AWSProfile string
	S3Bucket   string

	// ScreenOn and ScreenOff are HH:MM times the screen is switched on and off each day
	ScreenOn  string
	ScreenOff string
}

// Load builds a Config from the environment, falling back to defaults
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	rootPath := getenv("MF_ROOT_PATH", filepath.Join(home, ".magicframe"))

	cfg := &Config{
		RootPath:      rootPath,
		ImageDir:      getenv("MF_IMAGE_DIR", filepath.Join(home, "slideshow_images")),
		SessionFile:   getenv("MF_SESSION_FILE", filepath.Join(home, "magicframe_config.json")),
		DBPath:        getenv("MF_DB_PATH", filepath.Join(rootPath, "magicframe.db")),
		LogFile:       getenv("MF_LOG_FILE", filepath.Join(rootPath, "magicframe.log")),
		APIURL:        getenv("MF_API_URL", DefaultAPIURL),
		HTTPTimeout:   DefaultHTTPTimeout,
		ListenAddr:    getenv("MF_LISTEN_ADDR", DefaultListenAddr),
		Display:       getenv("MF_DISPLAY", DefaultDisplay),
		DisplayOutput: os.Getenv("MF_DISPLAY_OUTPUT"),
		WifiInterface: getenv("MF_WIFI_INTERFACE", DefaultWifiInterface),
		WifiCountry:   getenv("MF_WIFI_COUNTRY", DefaultWifiCountry),
		WpaConfPath:   getenv("MF_WPA_CONF", DefaultWpaConfPath),
		AWSProfile:    os.Getenv("MF_AWS_PROFILE"),
		S3Bucket:      os.Getenv("MF_S3_BUCKET"),
		ScreenOn:      os.Getenv("MF_SCREEN_ON"),
		ScreenOff:     os.Getenv("MF_SCREEN_OFF"),
	}

	if v := os.Getenv("MF_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MF_HTTP_TIMEOUT %q: %w", v, err)
		}
		cfg.HTTPTimeout = d
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("MF_LOG_LEVEL", "INFO"))); err != nil {
		return nil, fmt.Errorf("invalid MF_LOG_LEVEL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that flags or env may have set to something unusable
func (c *Config) Validate() error {
	switch c.Display {
	case "terminal", "imv":
	default:
		return fmt.Errorf("unknown display backend %q, expected terminal or imv", c.Display)
	}
	if c.APIURL == "" {
		return fmt.Errorf("api url is required")
	}
	if c.ImageDir == "" {
		return fmt.Errorf("image directory is required")
	}
	if (c.ScreenOn == "") != (c.ScreenOff == "") {
		return fmt.Errorf("MF_SCREEN_ON and MF_SCREEN_OFF must be set together")
	}
	return nil
}

// SetRoot moves the root directory and the files that default to living inside it
func (c *Config) SetRoot(root string) {
	if c.DBPath == filepath.Join(c.RootPath, "magicframe.db") {
		c.DBPath = filepath.Join(root, "magicframe.db")
	}
	if c.LogFile == filepath.Join(c.RootPath, "magicframe.log") {
		c.LogFile = filepath.Join(root, "magicframe.log")
	}
	c.RootPath = root
}

// BucketEnabled reports whether the optional S3 mirror is configured
func (c *Config) BucketEnabled() bool {
	return c.S3Bucket != ""
}

// ScheduleEnabled reports whether the screen follows a daily on/off schedule
func (c *Config) ScheduleEnabled() bool {
	return c.ScreenOn != "" && c.ScreenOff != ""
}

// EnsureDirs creates the root and image directories
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.RootPath, c.ImageDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SetupLogging points the default slog logger at the log file. The terminal belongs to the UI so
// nothing is written to stderr once the kiosk runs. The returned closer releases the file.
func (c *Config) SetupLogging() (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(c.LogFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(c.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: c.LogLevel})
	slog.SetDefault(slog.New(handler))
	return f, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
