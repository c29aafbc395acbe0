package ipc

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRuntimeSocketPathRequiresXDGRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	_, err := RuntimeSocketPath()
	require.Error(t, err)

	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	path, err := RuntimeSocketPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "disappility.sock"), path)
}

func TestAcquireRecoversStaleSocket(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	socketPath := filepath.Join(dir, "disappility.sock")
	require.NoError(t, os.WriteFile(socketPath, []byte("stale"), 0o600))

	rescueCalls := 0
	listener, err := Acquire(context.Background(), socketPath, 50*time.Millisecond, 2, func(context.Context) error {
		rescueCalls++
		return nil
	})
	require.NoError(t, err)
	defer listener.Close()

	require.NotZero(t, rescueCalls, "expected stale-socket rescue to run")
}

func TestAcquireReturnsAlreadyRunningWhenSocketResponsive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	socketPath := filepath.Join(dir, "disappility.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	defer listener.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- Serve(ctx, listener, HandlerFunc(func(_ context.Context, _ Request) Response {
			return Response{OK: true, State: "listening"}
		}))
	}()

	_, err = Acquire(context.Background(), socketPath, 80*time.Millisecond, 1, nil)
	require.True(t, errors.Is(err, ErrAlreadyRunning), "Acquire() error = %v, want ErrAlreadyRunning", err)

	cancel()
	require.NoError(t, <-serverDone)
}

func TestProbeFalseWhenNothingListens(t *testing.T) {
	t.Parallel()

	alive, err := Probe(context.Background(), filepath.Join(t.TempDir(), "missing.sock"), 50*time.Millisecond)
	require.NoError(t, err)
	require.False(t, alive)
}
