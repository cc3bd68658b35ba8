package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler creates a context that is canceled on SIGINT or
// SIGTERM. A second signal exits immediately without waiting for
// graceful shutdown.
func SetupSignalHandler() context.Context {
	return signalContext(make(chan os.Signal, 2), os.Exit)
}

func signalContext(sigChan chan os.Signal, exit func(int)) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
		<-sigChan
		exit(1)
	}()

	return ctx
}
