package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/config"
	"storefront-service/internal/api"
	"storefront-service/internal/broker"
	"storefront-service/internal/cart"
	"storefront-service/internal/catalog"
	"storefront-service/internal/checkout"
	"storefront-service/internal/coupon"
	"storefront-service/internal/kvstore"
	"storefront-service/internal/money"
	"storefront-service/internal/util"
	"storefront-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront service")

	if cfg.Observ.TracingEnabled {
		tp, err := util.InitTracer("storefront-service", cfg.Observ.JaegerEndpoint)
		if err != nil {
			log.Fatalf("Failed to initialize tracer: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				log.Printf("Error shutting down tracer: %v", err)
			}
		}()
	}

	kv, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer kv.Close()
	log.Printf("Storage connected: backend=%s", cfg.Storage.Backend)

	ctx := context.Background()

	cat, err := catalog.NewStore(ctx, kv)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	ledger, err := cart.NewLedger(ctx, cat, kv, cart.Config{
		ClearCouponOnClear: cfg.Business.ClearCartClearsCoupon,
	})
	if err != nil {
		log.Fatalf("Failed to restore cart: %v", err)
	}

	coupons := coupon.NewResolver()
	formatter := money.NewFormatter(cfg.Business.Locale, cfg.Business.CurrencySymbol)

	var publisher *broker.EventPublisher
	var auditWorker *worker.AuditWorker
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrders)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		log.Println("Kafka producer initialized")

		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrders, cfg.Kafka.ConsumerGroup)
		auditWorker = worker.NewAuditWorker(consumer)
		go func() {
			if err := auditWorker.Start(workerCtx); err != nil {
				log.Printf("Audit worker error: %v", err)
			}
		}()
	}

	processor := checkout.NewProcessor(cat, ledger, kv, publisher, checkout.Config{
		ShippingFee:      cfg.Business.ShippingFee,
		RequireCardCheck: cfg.Business.RequireCardCheck,
		PaymentDelay:     cfg.Business.PaymentDelay,
	})

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(cat, ledger, coupons, processor, formatter, cfg.Business.ShippingFee)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	if auditWorker != nil {
		auditWorker.Stop()
	}

	log.Println("Server exited")
}

func newStore(cfg *config.Config) (kvstore.Store, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		return kvstore.NewPostgresStore(cfg.Storage.PostgresURL, cfg.Storage.KeyPrefix)
	case "memory":
		return kvstore.NewMemoryStore(), nil
	default:
		return kvstore.NewRedisStore(cfg.Storage.RedisAddr, cfg.Storage.RedisPass, cfg.Storage.RedisDB, cfg.Storage.KeyPrefix)
	}
}
