package scaffold

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/storefront/internal/config"
	"github.com/dyluth/storefront/internal/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	printer.Out, printer.Err = io.Discard, io.Discard
	t.Cleanup(func() { printer.Out, printer.Err = os.Stdout, os.Stderr })

	t.Run("writes a loadable config", func(t *testing.T) {
		dir := t.TempDir()
		path, err := Initialize(dir, false)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, config.FileName), path)

		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5000", cfg.Backend.URL)
		assert.Equal(t, config.StoreFile, cfg.Session.Store)
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		dir := t.TempDir()
		existing := filepath.Join(dir, config.FileName)
		require.NoError(t, os.WriteFile(existing, []byte("version: \"1.0\"\n# mine\n"), 0644))

		_, err := Initialize(dir, false)
		var exists *ExistsError
		require.True(t, errors.As(err, &exists))
		assert.Equal(t, existing, exists.Path)

		data, err := os.ReadFile(existing)
		require.NoError(t, err)
		assert.Contains(t, string(data), "# mine")
	})

	t.Run("force replaces", func(t *testing.T) {
		dir := t.TempDir()
		existing := filepath.Join(dir, config.FileName)
		require.NoError(t, os.WriteFile(existing, []byte("garbage"), 0644))

		_, err := Initialize(dir, true)
		require.NoError(t, err)

		data, err := os.ReadFile(existing)
		require.NoError(t, err)
		assert.Contains(t, string(data), "backend:")
	})

	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "conf")
		_, err := Initialize(dir, false)
		require.NoError(t, err)
	})
}

func TestCheckExisting(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, CheckExisting(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), nil, 0644))
	assert.Error(t, CheckExisting(dir))
}
