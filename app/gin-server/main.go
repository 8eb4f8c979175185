package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	_ "go.uber.org/automaxprocs"

	"github.com/yoockh/isthissoup/config"
	"github.com/yoockh/isthissoup/internal/api/handlers"
	"github.com/yoockh/isthissoup/internal/api/middleware"
	"github.com/yoockh/isthissoup/internal/api/routes"
	"github.com/yoockh/isthissoup/internal/console"
	"github.com/yoockh/isthissoup/internal/logger"
	"github.com/yoockh/isthissoup/internal/metrics"
	"github.com/yoockh/isthissoup/internal/providers/llm"
	"github.com/yoockh/isthissoup/internal/services"
	"github.com/yoockh/isthissoup/internal/streamid"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stream ids: shared through Redis when configured, in-process otherwise
	var ids streamid.Sequencer = streamid.NewLocal()
	if cfg.RedisAddr != "" {
		rdb, err := config.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.WithError(err).Fatal("redis init failed")
		}
		defer rdb.Close()
		ids = streamid.NewRedisSequencer(rdb, streamid.DefaultKey)
		log.Info("redis connected")
	}

	// A provider that cannot be built does not stop the server; every ask
	// then fails with a server error, as a missing key would per request.
	provider, err := llm.New(ctx, cfg)
	if err != nil {
		log.WithError(err).WithField("provider", cfg.Provider).Error("llm provider unavailable")
		provider = llm.Unavailable{Err: err}
	}
	defer provider.Close()

	metrics.Register()

	verdictSvc := services.NewVerdictService(provider, ids, cfg.MaxOutputTokens)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Page:   handlers.NewPageHandler(console.FallbackMessage, log),
		Ask:    handlers.NewAskHandler(verdictSvc, log),
		Render: handlers.NewRenderHandler(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":     cfg.Port,
			"provider": provider.Name(),
			"model":    cfg.Model,
		}).Info("soup gateway listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
