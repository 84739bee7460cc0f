//go:build unix

package di

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNotifyContext(t *testing.T) {
	t.Run("cancelled by the signal", func(t *testing.T) {
		ctx := notifyContext(context.Background(), syscall.SIGUSR1)

		require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("context wasn't cancelled by the signal")
		}

		require.ErrorIs(t, ctx.Err(), context.Canceled)
		require.EqualError(t, context.Cause(ctx), "received signal: user defined signal 1")
	})

	t.Run("follows the parent", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		ctx := notifyContext(parent, syscall.SIGUSR2)

		cancel()

		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("context wasn't cancelled with the parent")
		}
	})
}
