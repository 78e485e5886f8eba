package progresso

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vawter.tech/stopper"
)

func TestWatchStopFileTriggersOnCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultStopFile)
	sctx := stopper.WithContext(context.Background())
	defer sctx.Stop(time.Second)

	var fired atomic.Int32
	require.NoError(t, WatchStopFile(sctx, path, discardLogger(), func() {
		fired.Add(1)
		sctx.Stop(time.Second)
	}))

	require.NoError(t, os.WriteFile(path, nil, 0o644))

	require.Eventually(t, sctx.IsStopping, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestWatchStopFileRemovesStaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultStopFile)
	require.NoError(t, os.WriteFile(path, []byte("left over"), 0o644))

	sctx := stopper.WithContext(context.Background())
	defer sctx.Stop(time.Second)

	require.NoError(t, WatchStopFile(sctx, path, discardLogger(), func() {
		t.Error("a stale stop file must not stop the run")
	}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "stale stop file should be removed")
	assert.False(t, sctx.IsStopping())
}

func TestWatchStopFileIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	sctx := stopper.WithContext(context.Background())
	defer sctx.Stop(time.Second)

	var fired atomic.Int32
	require.NoError(t, WatchStopFile(sctx, filepath.Join(dir, DefaultStopFile), discardLogger(), func() {
		fired.Add(1)
	}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "progresso.20240305.140709.xml"), nil, 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestWatchStopFileMissingDirectory(t *testing.T) {
	sctx := stopper.WithContext(context.Background())
	defer sctx.Stop(time.Second)

	err := WatchStopFile(sctx, filepath.Join(t.TempDir(), "nope", DefaultStopFile), discardLogger(), func() {})
	assert.Error(t, err)
}
