package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/roster/internal/app"
	"github.com/shrimpsizemoose/roster/internal/console"
	"github.com/shrimpsizemoose/roster/internal/notify"
	"github.com/shrimpsizemoose/roster/internal/render"
	"github.com/shrimpsizemoose/roster/internal/roster"
)

func main() {
	var configPath = flag.String("config", "", "Path to config file, defaults are used when empty")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	if addr := service.Config.Metrics.Listen; addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error.Printf("Metrics listener failed: %v", err)
			}
		}()
	}

	banner := notify.NewBanner(os.Stdout, service.Config.UI.NotificationTTL.Duration)
	defer banner.Close()

	term := console.New(os.Stdin, os.Stdout)

	opts := roster.Options{
		Renderer:    render.NewTable(os.Stdout),
		Notifier:    banner,
		Confirmer:   term,
		ReloadDelay: service.Config.UI.ReloadDelay.Duration,
	}
	if service.Cache != nil {
		opts.Cache = service.Cache
	}
	ctrl := roster.NewController(service.Gateway, opts)
	term.Attach(ctrl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ctrl.Restore(ctx); err != nil {
		logger.Error.Printf("Failed to restore cached students: %v", err)
	}
	ctrl.List(ctx)

	logger.Info.Printf("Connected to %s, type help for commands", service.Config.API.BaseURL)
	if err := term.Run(ctx); err != nil {
		logger.Error.Fatalf("Console error: %v", err)
	}
}
