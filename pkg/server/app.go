package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "StockPulse/internal/domain/repository"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
)

// App ties the service lifecycle together: storage init, Kafka intake,
// HTTP server, and ordered shutdown.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	store      domrepo.PostStore
	publisher  domrepo.Publisher
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates an App. Consumer and kh may be nil when Kafka intake is
// disabled.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	store domrepo.PostStore,
	publisher domrepo.Publisher,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		publisher: publisher,
		consumer:  consumer,
		kh:        kh,
		handler:   handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.store.Init(ctx); err != nil {
		a.logger.Error("storage init failed", applogger.Error(err))
		return err
	}
	a.logger.Info("storage ready", applogger.String("type", a.cfg.Storage.Type))

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.logger.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.logger.Info("kafka intake started", applogger.String("topic", a.kh.Topic()))
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown stops intake first so no new writes arrive, then the HTTP
// server, then infrastructure clients.
func (a *App) shutdown(ctx context.Context) error {
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("publisher close error", applogger.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("storage close error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
