package server

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"
	"time"

	xhttp "OptionPilot/pkg/http"
	applogger "OptionPilot/pkg/logger"
)

// Worker is a background task that runs until ctx is cancelled.
type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

// WorkerFunc adapts a function to Worker.
type WorkerFunc struct {
	ID string
	Fn func(ctx context.Context) error
}

func (w WorkerFunc) Name() string                  { return w.ID }
func (w WorkerFunc) Run(ctx context.Context) error { return w.Fn(ctx) }

// App encapsulates a service lifecycle: an optional HTTP server, background
// workers and resources closed on shutdown.
type App struct {
	name       string
	log        *applogger.Logger
	httpServer *xhttp.Server
	workers    []Worker
	closers    []func() error
	grace      time.Duration
}

// AppOption configures App.
type AppOption func(*App)

// WithHTTPServer attaches the HTTP server.
func WithHTTPServer(s *xhttp.Server) AppOption {
	return func(a *App) {
		a.httpServer = s
		if s != nil && s.ShutdownTimeout() > 0 {
			a.grace = s.ShutdownTimeout()
		}
	}
}

// WithWorkers adds background workers. Nil workers are ignored.
func WithWorkers(ws ...Worker) AppOption {
	return func(a *App) {
		for _, w := range ws {
			if w != nil {
				a.workers = append(a.workers, w)
			}
		}
	}
}

// WithClosers adds resources released after workers stop, in reverse order.
func WithClosers(fns ...func() error) AppOption {
	return func(a *App) {
		a.closers = append(a.closers, fns...)
	}
}

// WithAppLogger sets the logger.
func WithAppLogger(l *applogger.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// New creates a new App instance.
func New(name string, opts ...AppOption) *App {
	a := &App{
		name:  name,
		log:   applogger.Nop(),
		grace: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.Component(name)
	return a
}

// Run starts the application and blocks until SIGINT/SIGTERM, parent
// cancellation or the first worker failure.
func (a *App) Run(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			return err
		}
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for _, w := range a.workers {
		wg.Add(1)
		go func(w Worker) {
			defer wg.Done()
			a.log.Info("worker started", applogger.String("worker", w.Name()))
			err := w.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				a.log.Error("worker stopped", applogger.String("worker", w.Name()), applogger.Error(err))
				errOnce.Do(func() { firstErr = err })
				cancel()
				return
			}
			a.log.Info("worker stopped", applogger.String("worker", w.Name()))
		}(w)
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")

	return errors.Join(firstErr, a.shutdown(&wg))
}

func (a *App) shutdown(wg *sync.WaitGroup) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.grace)
	defer cancel()

	var errs []error
	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		a.log.Warn("workers did not stop within grace period")
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
