package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/krbenergy/uco-engine/internal/config"
	"github.com/krbenergy/uco-engine/internal/handler"
	"github.com/krbenergy/uco-engine/internal/pricing"
	"github.com/krbenergy/uco-engine/internal/repository"
	"github.com/krbenergy/uco-engine/internal/service"
	"github.com/krbenergy/uco-engine/pkg/response"
)

func main() {
	// .env is optional; viper also reads the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Repositories
	collectionRepo := repository.NewCollectionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	billRepo := repository.NewBillRepository(db)
	fboRepo := repository.NewFBORepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Services
	resolver := pricing.NewResolver(settingsRepo, redisClient, cfg.GetPricingCacheTTL(), cfg.FallbackRates())
	ledgerService := service.NewLedgerService(collectionRepo, fboRepo, resolver, cfg.Business.LedgerRetries)
	paymentService := service.NewPaymentService(paymentRepo, collectionRepo, fboRepo)
	billService := service.NewBillService(billRepo)

	// Handlers
	collectionHandler := handler.NewCollectionHandler(ledgerService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	billHandler := handler.NewBillHandler(billService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())

	router := setupRoutes(collectionHandler, paymentHandler, billHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	collectionHandler *handler.CollectionHandler,
	paymentHandler *handler.PaymentHandler,
	billHandler *handler.BillHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/collections", collectionHandler.CreateCollection).Methods("POST")
	api.HandleFunc("/collections/{collectionId}/payment", collectionHandler.ApplyPayment).Methods("PATCH")
	api.HandleFunc("/collections/{collectionId}/review", collectionHandler.ReviewCollection).Methods("PATCH")
	api.HandleFunc("/collections/{collectionId}", collectionHandler.UpdateCollection).Methods("PUT")

	api.HandleFunc("/payments/process", paymentHandler.ProcessBulkPayment).Methods("POST")
	api.HandleFunc("/payments/{paymentId}/status", paymentHandler.UpdateStatus).Methods("PATCH")

	api.HandleFunc("/bills", billHandler.CreateBill).Methods("POST")
	api.HandleFunc("/bills", billHandler.ListBills).Methods("GET")
	api.HandleFunc("/bills/{billId}/payment", billHandler.ApplyBillPayment).Methods("PATCH")

	return router
}
