package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aouyang1/magicframe/library"
	"github.com/aouyang1/magicframe/store"
)

func TestLocalManagerReconcile(t *testing.T) {
	db, err := store.NewDatabase(filepath.Join(t.TempDir(), "magicframe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	lib, err := library.New(filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)

	t0 := time.Unix(1700000000, 0)
	for _, name := range []string{"kept.jpg", "copied.png", "notes.txt"} {
		path := filepath.Join(lib.Path(), name)
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
		require.NoError(t, os.Chtimes(path, t0, t0))
	}
	require.NoError(t, db.RegisterPhoto("kept.jpg", store.OriginZip, t0.Add(time.Hour)))
	require.NoError(t, db.RegisterPhoto("deleted.jpg", store.OriginImage, t0))

	registered, removed, err := NewLocalManager(lib, db).Reconcile()
	require.NoError(t, err)
	assert.Equal(t, 1, registered)
	assert.Equal(t, 1, removed)

	photos, err := db.GetAllPhotos()
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "kept.jpg", photos[0].PhotoName)
	assert.Equal(t, store.OriginZip, photos[0].Origin)
	assert.Equal(t, "copied.png", photos[1].PhotoName)
	assert.Equal(t, store.OriginLocal, photos[1].Origin)
	assert.True(t, photos[1].AddedAt.Equal(t0))

	// a second pass has nothing to do
	registered, removed, err = NewLocalManager(lib, db).Reconcile()
	require.NoError(t, err)
	assert.Zero(t, registered)
	assert.Zero(t, removed)
}
