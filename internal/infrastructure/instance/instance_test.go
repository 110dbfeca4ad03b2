package instance_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/infrastructure/instance"
)

func shortTempDir(t *testing.T) string {
	t.Helper()
	// unix socket paths are limited to ~108 bytes
	dir, err := os.MkdirTemp("", "webhub")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

func TestAcquire_Exclusive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")

	first, err := instance.Acquire(dir)
	require.NoError(t, err)

	_, err = instance.Acquire(dir)
	assert.ErrorIs(t, err, instance.ErrAlreadyRunning)

	require.NoError(t, first.Release())
	require.NoError(t, first.Release())

	again, err := instance.Acquire(dir)
	require.NoError(t, err)
	assert.Equal(t, instance.LockPath(dir), again.Path())
	require.NoError(t, again.Release())
}

func TestAcquire_EmptyDir(t *testing.T) {
	_, err := instance.Acquire("")
	assert.Error(t, err)
}

func startServer(t *testing.T, handler instance.Handler) string {
	t.Helper()
	path := instance.SocketPath(shortTempDir(t))
	srv := instance.NewServer(path, handler)
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("control server did not stop")
		}
	})
	return path
}

func TestControl_RoundTrip(t *testing.T) {
	var (
		mu  sync.Mutex
		got []instance.Request
	)
	path := startServer(t, instance.HandlerFunc(func(_ context.Context, req instance.Request) (string, error) {
		mu.Lock()
		got = append(got, req)
		mu.Unlock()
		switch req.Command {
		case instance.CmdToggle:
			return "shown", nil
		case instance.CmdOpen:
			return "", entity.ErrNotFound
		}
		return "pong", nil
	}))

	ctx := context.Background()
	resp, err := instance.Send(ctx, path, instance.Request{Command: instance.CmdToggle, WebAppID: "a"})
	require.NoError(t, err)
	require.NoError(t, resp.Err())
	assert.Equal(t, "shown", resp.Result)

	resp, err = instance.Send(ctx, path, instance.Request{Command: instance.CmdOpen, WebAppID: "ghost"})
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.EqualError(t, resp.Err(), entity.ErrNotFound.Error())

	resp, err = instance.Send(ctx, path, instance.Request{Command: instance.CmdPing})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Result)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 3)
	assert.Equal(t, instance.Request{Command: instance.CmdToggle, WebAppID: "a"}, got[0])
}

func TestSend_NotRunning(t *testing.T) {
	path := instance.SocketPath(shortTempDir(t))
	_, err := instance.Send(context.Background(), path, instance.Request{Command: instance.CmdPing})
	assert.True(t, errors.Is(err, instance.ErrNotRunning))
}

func TestServer_ServeWithoutListen(t *testing.T) {
	srv := instance.NewServer("/nonexistent/webhub.sock", nil)
	assert.Error(t, srv.Serve(context.Background()))
}

func TestServer_RemovesSocketOnShutdown(t *testing.T) {
	path := instance.SocketPath(shortTempDir(t))
	srv := instance.NewServer(path, instance.HandlerFunc(func(context.Context, instance.Request) (string, error) {
		return "", nil
	}))
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	cancel()
	require.NoError(t, <-done)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
