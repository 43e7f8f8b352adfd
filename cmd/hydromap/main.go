package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"

	"github.com/dryfly-scientist/Hydro-Map/internal/cache"
	"github.com/dryfly-scientist/Hydro-Map/internal/delivery"
	"github.com/dryfly-scientist/Hydro-Map/internal/gdalio"
	"github.com/dryfly-scientist/Hydro-Map/internal/notification"
	"github.com/dryfly-scientist/Hydro-Map/internal/nri"
	"github.com/dryfly-scientist/Hydro-Map/internal/observability"
	"github.com/dryfly-scientist/Hydro-Map/internal/properties"
	"github.com/dryfly-scientist/Hydro-Map/internal/server"
	"github.com/dryfly-scientist/Hydro-Map/internal/ui"
)

func printBanner() {
	figure1 := figure.NewFigure("Hydro", "isometric1", true)
	figure2 := figure.NewFigure("Map", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

// serveFunc builds the NRI if needed, then serves clicks until ctx is done.
func serveFunc(cfg *properties.Config, svc *delivery.Service, logger *slog.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if !svc.Ready() {
			if _, err := svc.RunBatch(ctx); err != nil {
				return err
			}
		}
		srv := server.NewServer(cfg.HTTPAddr, svc, cfg.Discharge, cfg.RequestTimeout, logger)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
	}
}

func main() {
	serve := flag.Bool("serve", false, "build the NRI and serve click evaluation over HTTP without the menu")
	flag.Parse()

	cfg, err := properties.Load()
	if err != nil {
		fmt.Printf("\033[31m%s\033[0m\n", err.Error())
		os.Exit(1)
	}
	logger := observability.NewLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)
	notifier := notification.NewDiscord(cfg.DiscordErrorURL, cfg.DiscordSuccessURL)

	defer func() {
		if r := recover(); r != nil {
			pc, file, line, ok := runtime.Caller(3)
			location := "Unknown location"
			if ok {
				location = fmt.Sprintf("%s:%d in %s", file, line, runtime.FuncForPC(pc).Name())
			}
			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mLocation: %s\033[0m\n", location)

			errMessage := fmt.Sprintf("Hydro-Map panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, debug.Stack())
			if err := notifier.SendError(errMessage); err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
			os.Exit(2)
		}
	}()

	deps := delivery.Deps{
		IO:       gdalio.Source{EPSG: cfg.EPSG},
		Notifier: notifier,
		Metrics:  observability.NewMetrics(),
		Logger:   logger,
	}
	if cfg.CacheDir != "" {
		deps.Cache = cache.NewFileCache[*nri.Layers](properties.Path(cfg.CacheDir), "layers")
	}
	svc := delivery.NewService(cfg, deps)
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	serveFn := serveFunc(cfg, svc, logger)

	if *serve {
		if err := serveFn(ctx); err != nil {
			logger.Error("server stopped", "error", err)
			stop()
			svc.Close()
			os.Exit(1)
		}
		return
	}

	printBanner()
	ui.NewMenu(svc, serveFn, cfg.Discharge, os.Stdin, os.Stdout).Show(ctx)
}
