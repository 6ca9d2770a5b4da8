package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vbonduro/cafeliz/internal/carousel"
	"github.com/vbonduro/cafeliz/internal/catalog"
	"github.com/vbonduro/cafeliz/internal/imagestore/local"
	"github.com/vbonduro/cafeliz/internal/notify"
	"github.com/vbonduro/cafeliz/internal/sales"
	"github.com/vbonduro/cafeliz/internal/service"
	"github.com/vbonduro/cafeliz/internal/store"
	"github.com/vbonduro/cafeliz/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg, logger := a.cfg, a.logger

	policy, err := store.ParseIDPolicy(cfg.IDPolicy)
	if err != nil {
		return err
	}

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Error("failed to open storage", "backend", cfg.StorageBackend, "error", err)
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	images, err := local.New(cfg.ImagePath)
	if err != nil {
		logger.Error("failed to initialize image store", "error", err)
		return err
	}

	slides, err := carousel.Load(cfg.CarouselFile)
	if err != nil {
		logger.Warn("using default carousel", "error", err)
		slides = carousel.Defaults()
	}
	rotator := carousel.NewRotator(slides, carousel.Interval)
	go rotator.Run(ctx)

	inbox := notify.NewInbox(0)
	userNotices := notify.Multi{inbox, notify.NewLog(logger)}
	opts := store.Options{Notifier: userNotices, Logger: logger, IDPolicy: policy}

	svc := service.NewStorefront(service.Deps{
		Menu:      catalog.NewStore(backend, opts),
		Orders:    sales.NewStore(backend, opts),
		Rotator:   rotator,
		Reporter:  newReporter(cfg, logger),
		Images:    images,
		Suggester: newSuggester(cfg, logger),
		Notifier:  userNotices,
		Admin:     newAdmin(cfg, logger),
		Logger:    logger,
	})
	if err := svc.Load(ctx); err != nil {
		// Already surfaced as a notice; serve with what loaded.
		logger.Warn("starting with empty collections", "error", err)
	}

	serveErr := web.NewServer(svc, images, inbox, logger).ListenAndServe(ctx, cfg.ListenAddr)

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Flush(flushCtx); err != nil {
		logger.Error("pending saves did not finish", "error", err)
	}
	return serveErr
}
