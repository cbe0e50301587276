package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/unsplash-picker/api/openapi"
	"github.com/donaldgifford/unsplash-picker/internal/api/handlers"
	"github.com/donaldgifford/unsplash-picker/internal/api/middleware"
	"github.com/donaldgifford/unsplash-picker/internal/cache"
	"github.com/donaldgifford/unsplash-picker/internal/tracing"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the picker HTTP API",
		Long: "Serves one picker session over HTTP. The first page of the editorial\n" +
			"feed, or of picker.query when set, is loaded at startup.",
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Error("closing services", "error", err)
		}
	}()

	ctx := cmd.Context()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			a.log.Warn("flushing traces", "error", err)
		}
	}()
	if cfg.Tracing.Enabled {
		a.log.Info("tracing enabled", "endpoint", cfg.Tracing.Endpoint, "sample_ratio", cfg.Tracing.SampleRatio)
	}

	p, err := a.newPicker()
	if err != nil {
		return err
	}
	defer p.Close()

	if cfg.Picker.Query != "" {
		if err := p.SetSearchText(cfg.Picker.Query); err != nil {
			return fmt.Errorf("applying initial query: %w", err)
		}
	}
	p.FetchNext(ctx)

	if a.disk != nil {
		janitor, err := cache.NewJanitor(a.disk, cfg.Cache.PurgeInterval, a.log.With("component", "janitor"))
		if err != nil {
			return fmt.Errorf("scheduling cache purge: %w", err)
		}
		janitor.Start()
		defer func() { <-janitor.Stop().Done() }()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.Recovery(a.log))
	e.Use(middleware.RequestLog(a.log))
	e.Use(middleware.Metrics())

	var pinger handlers.Pinger
	if a.disk != nil {
		pinger = a.disk
	}
	health := handlers.NewHealthHandler(pinger)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	humaCfg := huma.DefaultConfig("Unsplash Picker API", Version)
	humaCfg.DocsPath = ""
	api := humaecho.New(e, humaCfg)
	handlers.RegisterPhotoRoutes(api, handlers.NewPhotosHandler(ctx, p))
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(a.limiter))
	openapi.RegisterRoutes(e, api)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	a.log.Info("starting server", "addr", addr, "source", p.Status().Source.String())

	serveErr := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	a.log.Info("server stopped")
	return nil
}
