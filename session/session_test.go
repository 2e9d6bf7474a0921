package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "magicframe_config.json")

	want := &Session{Token: "abc123", UserID: 7, Username: "grandma"}
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"abc123","user_id":7,"username":"grandma"}`, string(data))
}

func TestClearWritesNullFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "magicframe_config.json")
	require.NoError(t, Save(path, &Session{Token: "abc", UserID: 1, Username: "u"}))
	require.NoError(t, Clear(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":null,"user_id":null,"username":null}`, string(data))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestLoadPartialSessionIsLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "magicframe_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"abc","user_id":null,"username":"u"}`), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "magicframe_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
