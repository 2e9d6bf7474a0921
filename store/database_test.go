package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "nested", "magicframe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAppSettingsBootstrapDefaults(t *testing.T) {
	db := newDatabase(t)

	settings, err := db.GetAppSettings()
	require.NoError(t, err)
	assert.Equal(t, DefaultAppSettings(), settings)
	assert.Equal(t, 10*time.Second, settings.SlideshowDelay())
	assert.Equal(t, 5*time.Minute, settings.PollInterval())
}

func TestUpsertAppSettings(t *testing.T) {
	db := newDatabase(t)

	want := &AppSettings{SlideshowDelaySeconds: 30, PollIntervalSeconds: 60, ShuffleEnabled: false}
	require.NoError(t, db.UpsertAppSettings(want))

	got, err := db.GetAppSettings()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.Error(t, db.UpsertAppSettings(&AppSettings{SlideshowDelaySeconds: 0, PollIntervalSeconds: 60}))
}

func TestRegisterPhotos(t *testing.T) {
	db := newDatabase(t)
	t0 := time.Unix(1700000000, 0)

	require.NoError(t, db.RegisterPhoto("a.jpg", OriginZip, t0))
	require.NoError(t, db.RegisterPhoto("b.jpg", OriginImage, t0.Add(time.Minute)))
	require.NoError(t, db.RegisterPhotoIfNotExists("a.jpg", OriginLocal, t0.Add(time.Hour)))

	photos, err := db.GetAllPhotos()
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "b.jpg", photos[0].PhotoName)
	assert.Equal(t, OriginZip, photos[1].Origin)
	assert.True(t, photos[1].AddedAt.Equal(t0))

	count, err := db.GetPhotoCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRegisterPhotoRefreshesOrigin(t *testing.T) {
	db := newDatabase(t)
	t0 := time.Unix(1700000000, 0)

	require.NoError(t, db.RegisterPhoto("a.jpg", OriginLocal, t0))
	require.NoError(t, db.RegisterPhoto("a.jpg", OriginMetadata, t0.Add(time.Hour)))

	photos, err := db.GetAllPhotos()
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, OriginMetadata, photos[0].Origin)
}

func TestDeletePhoto(t *testing.T) {
	db := newDatabase(t)
	require.NoError(t, db.RegisterPhoto("a.jpg", OriginLocal, time.Unix(1700000000, 0)))

	require.NoError(t, db.DeletePhoto("a.jpg"))
	require.NoError(t, db.DeletePhoto("never-registered.jpg"))

	count, err := db.GetPhotoCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}
