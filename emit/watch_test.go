package emit_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richarddahl/sqlemit/emit"
)

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "emit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tx_scope: batch\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *emit.Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- emit.WatchConfig(ctx, path, func(c *emit.Config, err error) {
			if err == nil {
				reloaded <- c
			}
		})
	}()

	// The watcher needs a moment to register before the first rewrite.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("tx_scope: statement\n"), 0o644))

	select {
	case c := <-reloaded:
		assert.Equal(t, "statement", c.TxScope)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatchConfigMissingDir(t *testing.T) {
	t.Parallel()

	err := emit.WatchConfig(context.Background(),
		filepath.Join(t.TempDir(), "absent", "emit.yaml"), func(*emit.Config, error) {})
	require.Error(t, err)
}
