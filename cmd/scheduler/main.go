package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/krbenergy/uco-engine/internal/config"
	"github.com/krbenergy/uco-engine/internal/repository"
	"github.com/krbenergy/uco-engine/internal/service"
)

// The scheduler runs the forward-reconciliation pass: a crash between
// inserting a payment batch and stamping its collections leaves the batch
// stuck in PROCESSING, and this job re-applies the missing updates.
func main() {
	log.Println("Starting payment reconciliation scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	paymentRepo := repository.NewPaymentRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	fboRepo := repository.NewFBORepository(db)
	paymentService := service.NewPaymentService(paymentRepo, collectionRepo, fboRepo)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Printf("Invalid SCHEDULER_TIMEZONE %q, using UTC: %v", cfg.Scheduler.Timezone, err)
		location = time.UTC
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	_, err = c.AddFunc(cfg.Scheduler.ReconcileSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		stamped, err := paymentService.ReconcileProcessing(ctx, cfg.GetReconcileAfter())
		if err != nil {
			log.Printf("Reconciliation pass failed: %v", err)
			return
		}
		if stamped > 0 {
			log.Printf("Reconciliation pass stamped %d collections", stamped)
		}
	})
	if err != nil {
		log.Fatalf("Error scheduling reconciliation job: %v", err)
	}

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}
