package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskflow/api/handler"
	"github.com/fastygo/taskflow/internal/app"
	"github.com/fastygo/taskflow/internal/config"
	"github.com/fastygo/taskflow/internal/middleware"
	"github.com/fastygo/taskflow/internal/router"
	"github.com/fastygo/taskflow/internal/services/lifecycle"
	"github.com/fastygo/taskflow/pkg/httpcontext"
	"github.com/fastygo/taskflow/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	engine, err := app.Build(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to start engine", zap.Error(err))
	}
	manager.Register("storage", engine.Close)

	engine.Monitor.Start()
	manager.RegisterFunc("monitor", engine.Monitor.Stop)

	engine.Resync.Start()
	manager.Register("resync", engine.Resync.Stop)

	ctxAdapter := httpcontext.NewAdapterWithBase(appCtx, cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:        apiHandler.NewTaskHandler(engine.Tasks, engine.Query, engine.Settings, engine.Trackers, ctxAdapter, zapLogger),
		Suggestion:  apiHandler.NewSuggestionHandler(engine.Tasks, engine.Suggest, engine.Dismissed, ctxAdapter, zapLogger),
		Tracker:     apiHandler.NewTrackerHandler(engine.Trackers, ctxAdapter, zapLogger),
		Interchange: apiHandler.NewInterchangeHandler(engine.Tasks, engine.Codec, ctxAdapter, zapLogger),
		Settings:    apiHandler.NewSettingsHandler(engine.Settings, ctxAdapter, zapLogger),
		Health:      apiHandler.NewHealthHandler(engine.Monitor, ctxAdapter, zapLogger),
	}
	r := router.New(handlers)

	server := &fasthttp.Server{
		Handler: middleware.Chain(r.Handler,
			middleware.Recover(zapLogger),
			middleware.RequestID(),
			middleware.AccessLog(zapLogger),
		),
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxRequestBodySize: cfg.HTTP.MaxBodySize,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver),
			zap.Int("tasks", engine.Tasks.Len()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
