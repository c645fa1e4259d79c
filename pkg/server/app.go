package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FinStudies/pkg/config"
	xhttp "FinStudies/pkg/http"
	pkgkafka "FinStudies/pkg/kafka"
	applogger "FinStudies/pkg/logger"
)

// component is a background service with a start/stop lifecycle.
type component interface {
	Start() error
	Stop(ctx context.Context) error
}

type namedCloser struct {
	name string
	c    io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer component
	consumer   component
	topic      string
	closers    []namedCloser
}

// New creates a new App serving httpServer.
func New(cfg *config.Config, log *applogger.Logger, httpServer *xhttp.Server) *App {
	a := &App{cfg: cfg, log: log}
	if httpServer != nil {
		a.httpServer = httpServer
	}
	return a
}

// SetConsumer registers h on consumer; both run alongside the HTTP server.
func (a *App) SetConsumer(consumer *pkgkafka.Consumer, h pkgkafka.MessageHandler) {
	consumer.RegisterHandler(h)
	a.consumer = consumer
	a.topic = h.Topic()
}

// AddCloser registers a resource released on shutdown, in registration order.
func (a *App) AddCloser(name string, c io.Closer) {
	a.closers = append(a.closers, namedCloser{name: name, c: c})
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

// Serve starts all components and blocks until ctx is done, then shuts down.
func (a *App) Serve(ctx context.Context) error {
	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.topic))
	}

	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			a.log.Error("http server start error", applogger.Error(err))
			return err
		}
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	// Consumer before closers: in-flight handlers may still publish.
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	for _, nc := range a.closers {
		if err := nc.c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("resource", nc.name), applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
