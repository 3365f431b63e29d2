package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func listen(name string, srv *http.Server) {
	slog.Info(name+" server listening", "address", srv.Addr)

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		slog.Error("failed to listen and serve "+name+" server", "error", err)
		os.Exit(1)
	}
}

// Start launches the HTTP and SSE servers and returns a channel closed on shutdown.
func (a *App) Start() <-chan struct{} {
	terminateChan := make(chan struct{})

	go listen("http", a.httpServer)
	go listen("sse", a.sseServer)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigint)

		sig := <-sigint
		slog.Info("termination signal received", "signal", sig.String())

		if a.cancel != nil {
			a.cancel()
		}
		close(terminateChan)
	}()

	return terminateChan
}

// Serve runs the HTTP server on the provided listener for tests.
func (a *App) Serve(l net.Listener) <-chan error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- a.httpServer.Serve(l)
		close(errChan)
	}()

	return errChan
}

// Stop drains in order: live verification sessions, listeners, in-flight
// backend calls, then the remaining resources.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	// Closing sessions ends every open stream, which Shutdown would otherwise wait on.
	if a.verification != nil {
		slog.InfoContext(ctx, "closing verification sessions", "count", a.verification.Len())
		a.verification.Shutdown(ctx)
	}

	servers := []struct {
		name string
		srv  *http.Server
	}{
		{name: "SSE Server", srv: a.sseServer},
		{name: "HTTP Server", srv: a.httpServer},
	}
	for _, s := range servers {
		if err := s.srv.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", s.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "waiting for all goroutine to finish")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "error from goroutines executions", "error", err)
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application gracefully shutdown")
}
