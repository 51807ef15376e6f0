package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	for _, title := range []string{"entry_2", "entry_1", "Go"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, title+".md"), []byte("# "+title), 0o644))
	}

	t.Run("All titles are printed in order", func(t *testing.T) {
		out := runCommand(t, "list", "--log-level", "error", "--entries-dir", dir)
		assert.Equal(t, "Go\nentry_1\nentry_2\n", out)
	})

	t.Run("A query keeps only the titles containing it", func(t *testing.T) {
		out := runCommand(t, "list", "--log-level", "error", "--entries-dir", dir, "try_1")
		assert.Equal(t, "entry_1\n", out)
	})

	t.Run("An empty memory store prints nothing", func(t *testing.T) {
		out := runCommand(t, "list", "--log-level", "error", "--backend", "memory")
		assert.Empty(t, out)
	})
}
