package di

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/defval/di"
)

var contextDiOptions = di.Options(
	di.Provide(newBaseContext),
)

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// The base context is cancelled once the process receives one of the shutdown signals.
// The signal is available through context.Cause
func newBaseContext() context.Context {
	return notifyContext(context.Background(), shutdownSignals...)
}

func notifyContext(parent context.Context, signals ...os.Signal) context.Context {
	ctx, cancel := context.WithCancelCause(parent)

	received := make(chan os.Signal, 1)
	signal.Notify(received, signals...)
	go func() {
		defer signal.Stop(received)

		select {
		case sig := <-received:
			cancel(fmt.Errorf("received signal: %s", sig))
		case <-ctx.Done():
		}
	}()

	return ctx
}
