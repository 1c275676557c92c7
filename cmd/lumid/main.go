package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "lumi/internal/adapters/http"
	"lumi/internal/bootstrap"
	"lumi/internal/config"
	"lumi/internal/observability/logging"
	"lumi/internal/observability/metrics"
)

// lumid runs the HTTP API and the ingestion worker in one process: the
// keyword index and chunk registry are process-local, so retrieval must see
// the same memory the worker writes to.
func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("lumid", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	serverMetrics := metrics.NewServerMetrics("lumid")
	workerMetrics := metrics.NewWorkerMetrics(serverMetrics.Registry(), "lumid")

	router := httpadapter.NewRouter(
		app.IngestUC,
		app.AskUC,
		app.RetrieveUC,
		app.CollectionsUC,
		app.Sources,
		serverMetrics,
		app.RetrievalDefaults,
		cfg.AskRateRPS,
		cfg.AskRateBurst,
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	workerDone := make(chan error, 1)
	go func() {
		logger.Info("worker subscribed", "subject", cfg.NATSSubject)
		workerDone <- app.Queue.SubscribeSourceIngested(ctx, func(handlerCtx context.Context, sourceID string) error {
			processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
			defer cancel()

			workerMetrics.StartSource()
			start := time.Now()
			err := app.ProcessUC.ProcessByID(processCtx, sourceID)
			workerMetrics.FinishSource("lumid", time.Since(start), err)
			return err
		})
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
	if err := <-workerDone; err != nil {
		logger.Error("worker shutdown error", "error", err)
	}
}
