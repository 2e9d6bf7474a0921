package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"MF_ROOT_PATH", "MF_IMAGE_DIR", "MF_SESSION_FILE", "MF_API_URL", "MF_DISPLAY", "MF_LOG_LEVEL", "MF_HTTP_TIMEOUT", "MF_S3_BUCKET", "MF_SCREEN_ON", "MF_SCREEN_OFF"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "slideshow_images"), cfg.ImageDir)
	assert.Equal(t, filepath.Join(home, "magicframe_config.json"), cfg.SessionFile)
	assert.Equal(t, filepath.Join(home, ".magicframe", "magicframe.db"), cfg.DBPath)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultDisplay, cfg.Display)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.BucketEnabled())
	assert.False(t, cfg.ScheduleEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MF_API_URL", "http://localhost:9000/api.php")
	t.Setenv("MF_DISPLAY", "imv")
	t.Setenv("MF_HTTP_TIMEOUT", "5s")
	t.Setenv("MF_LOG_LEVEL", "debug")
	t.Setenv("MF_S3_BUCKET", "family-photos")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/api.php", cfg.APIURL)
	assert.Equal(t, "imv", cfg.Display)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.BucketEnabled())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Setenv("MF_DISPLAY", "hologram")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("MF_DISPLAY", "")
	t.Setenv("MF_HTTP_TIMEOUT", "soon")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("MF_HTTP_TIMEOUT", "")
	t.Setenv("MF_SCREEN_ON", "07:00")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("MF_SCREEN_OFF", "22:00")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.ScheduleEnabled())
}

func TestSetRoot(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("MF_ROOT_PATH", "")
	t.Setenv("MF_DB_PATH", "")
	t.Setenv("MF_LOG_FILE", "/var/log/frame.log")

	cfg, err := Load()
	require.NoError(t, err)

	cfg.SetRoot("/srv/frame")
	assert.Equal(t, "/srv/frame", cfg.RootPath)
	assert.Equal(t, filepath.Join("/srv/frame", "magicframe.db"), cfg.DBPath)
	// an explicitly configured log file stays put
	assert.Equal(t, "/var/log/frame.log", cfg.LogFile)
}
