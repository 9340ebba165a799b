package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./data/dongyar.db", cfg.DBPath)
	assert.Equal(t, "fa", cfg.Locale)
	assert.Equal(t, "toman", cfg.Currency)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.AuthEnabled())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOCALE", "fa-IR")
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "fa-IR", cfg.Locale)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.AuthEnabled())
}

func TestLoad_DotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DONGYAR_TEST_UNUSED=1\nCURRENCY=rial\n"), 0o600))

	// The environment wins over the file.
	t.Setenv("PORT", "7070")
	t.Cleanup(func() {
		os.Unsetenv("CURRENCY")
		os.Unsetenv("DONGYAR_TEST_UNUSED")
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "rial", cfg.Currency)
	assert.Equal(t, "7070", cfg.Port)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("TOKEN_TTL", "forever")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
