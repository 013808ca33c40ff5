package main

import (
	"log"
	"os"

	"github.com/craftdesk-dev/craftdesk/db"
	"github.com/craftdesk-dev/craftdesk/internal/auth"
	"github.com/craftdesk-dev/craftdesk/internal/automation"
	"github.com/craftdesk-dev/craftdesk/internal/handlers"
	"github.com/craftdesk-dev/craftdesk/internal/router"
	"github.com/craftdesk-dev/craftdesk/internal/scheduler"
	"github.com/craftdesk-dev/craftdesk/internal/services"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Composition root for the automation engine: one store, one
	// executor, the immediate-path dispatcher and the sweep scheduler.
	store := automation.NewGormStore()

	notifier := services.NewNotifier()
	notifier.Broadcast = handlers.BroadcastRefresh

	var email automation.EmailSender

	if os.Getenv("SMTP_HOST") != "" {
		email = services.NewSMTPSenderFromEnv()
	} else {
		email = services.LogEmailSender{}
	}

	executor := automation.NewExecutor(store, store, notifier, email)

	automation.Initialize(store, executor)
	defer automation.Shutdown()

	sched := scheduler.New(store, store, executor, notifier)
	sched.Start()
	defer sched.Stop()

	r := router.NewRouter()

	port := os.Getenv("PORT")

	if port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
