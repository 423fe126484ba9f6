package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carebridge-health/dme-orders/pkg/common/config"
	"github.com/carebridge-health/dme-orders/pkg/common/database"
	"github.com/carebridge-health/dme-orders/pkg/common/kafka"
	"github.com/carebridge-health/dme-orders/pkg/common/logger"
	"github.com/carebridge-health/dme-orders/pkg/common/models"
	"github.com/carebridge-health/dme-orders/pkg/extract"
	"github.com/carebridge-health/dme-orders/pkg/llm"
	"github.com/carebridge-health/dme-orders/pkg/orders"
	"github.com/carebridge-health/dme-orders/pkg/strategy"
	"github.com/carebridge-health/dme-orders/pkg/taxonomy"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	repo := orders.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate order tables")
	}

	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to load taxonomy file, using defaults")
	}

	parser := extract.NewParser(tax)
	validator := extract.NewValidator(tax)

	var primary strategy.Extractor
	llmClient := llm.NewClient(cfg)
	if llmClient.Enabled() {
		primary = strategy.Validated(llmClient, func(order *models.DeviceOrder) error {
			if errs := validator.ValidateOrder(order); len(errs) > 0 {
				return fmt.Errorf("llm order failed validation: %v", errs)
			}
			return nil
		})
		logger.Log.Info("LLM extraction enabled")
	} else {
		logger.Log.Info("no LLM credential configured, rule-based extraction only")
	}

	selector := strategy.NewSelector(primary, parser)

	cache := orders.NewCache(database.GetRedis(), cfg.OrderCacheTTL)

	producer := kafka.NewProducer(cfg.OrderTopic)
	defer producer.Close()

	svc := orders.NewService(selector, repo, cache, producer, cfg.OrderRecordTTL)
	handler := orders.NewHTTPHandler(svc, cfg.MaxRequestBody)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Extraction Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := svc.Cleanup(context.Background()); err != nil {
					logger.Log.WithError(err).Warn("cleanup job failed")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Extraction Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Extraction Service stopped")
}
