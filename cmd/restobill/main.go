// Package main запускает HTTP-сервер сервиса ресторанных заказов.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/restobill-system/internal/catalog"
	"github.com/mmeshcher/restobill-system/internal/config"
	"github.com/mmeshcher/restobill-system/internal/handler"
	"github.com/mmeshcher/restobill-system/internal/ledger"
	"github.com/mmeshcher/restobill-system/internal/middleware"
	"github.com/mmeshcher/restobill-system/internal/printer"
	"github.com/mmeshcher/restobill-system/internal/repository"
	"github.com/mmeshcher/restobill-system/internal/staff"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	var cat *catalog.Catalog
	if cfg.MenuFile != "" {
		cat, err = catalog.NewFromFile(cfg.MenuFile)
	} else {
		cat, err = catalog.New()
	}
	if err != nil {
		sugar.Fatalw("menu initialization error", "error", err.Error())
	}

	var store ledger.Store
	switch {
	case cfg.DatabaseURI != "":
		pg, err := repository.NewPostgresStore(cfg.DatabaseURI, cfg.BranchID)
		if err != nil {
			sugar.Fatalw("database initialization error", "error", err.Error())
		}
		defer pg.Close()
		store = pg
	case cfg.SnapshotFile != "":
		fs, err := repository.NewFileStore(cfg.SnapshotFile)
		if err != nil {
			sugar.Fatalw("snapshot file initialization error", "error", err.Error())
		}
		store = fs
	default:
		sugar.Infow("no store configured, orders will not survive restart")
	}

	led := ledger.New(cat, store, cfg.TaxRateBP, logger)
	led.Restore(context.Background())

	var dispatcher *printer.Dispatcher
	if cfg.PrinterAddress != "" {
		dispatcher = printer.NewDispatcher(printer.NewClient(cfg.PrinterAddress), logger)
	} else {
		dispatcher = printer.NewDispatcher(nil, logger)
	}

	authMiddleware := middleware.NewAuthMiddleware("restobill-secret")
	h := handler.NewHandler(led, cat, staff.DefaultRoster(), dispatcher, cfg.BranchID, logger, authMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск фоновой отправки чеков на печать
	g.Go(func() error {
		dispatcher.Run(ctx)
		return nil
	})

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting restobill server", "addr", cfg.RunAddress, "branch", cfg.BranchID)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
