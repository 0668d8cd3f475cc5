package main

import (
	"context"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/suprebose/wallet-platform/pkg/handlers"
	"github.com/suprebose/wallet-platform/pkg/loans"
	"github.com/suprebose/wallet-platform/pkg/models"
	"github.com/suprebose/wallet-platform/pkg/rosca"
	"github.com/suprebose/wallet-platform/pkg/savings"
	"github.com/suprebose/wallet-platform/pkg/scheduler"
	"github.com/suprebose/wallet-platform/pkg/storage"
	dydbstore "github.com/suprebose/wallet-platform/pkg/storage/dynamodb"
	memstore "github.com/suprebose/wallet-platform/pkg/storage/memory"
	"github.com/suprebose/wallet-platform/pkg/wallet"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	clock := scheduler.SystemClock{}

	var store storage.Storage
	var sched scheduler.Scheduler = scheduler.Noop{}

	if os.Getenv("STORAGE_BACKEND") == "memory" {
		// Local mode: in-memory store, explicit period evaluation, seeded
		// catalog.
		mem := memstore.New()
		for _, g := range models.DefaultGroupCatalog() {
			g := g
			if err := mem.PutGroup(context.Background(), &g); err != nil {
				log.Fatalf("failed to seed group catalog: %v", err)
			}
		}
		store = mem
	} else {
		cfg, err := config.LoadDefaultConfig(context.TODO())
		if err != nil {
			log.Fatalf("unable to load SDK config, %v", err)
		}

		dbClient := dynamodb.NewFromConfig(cfg)
		usersTable := os.Getenv("DYNAMODB_USERS_TABLE_NAME")
		groupsTable := os.Getenv("DYNAMODB_GROUPS_TABLE_NAME")
		eventsTable := os.Getenv("DYNAMODB_EVENTS_TABLE_NAME")
		if usersTable == "" || groupsTable == "" || eventsTable == "" {
			log.Fatal("One or more DynamoDB table name environment variables are not set")
		}
		store = dydbstore.New(dbClient, usersTable, groupsTable, eventsTable)

		sqsQueueURL := os.Getenv("SQS_QUEUE_URL")
		if sqsQueueURL == "" {
			log.Fatal("SQS_QUEUE_URL environment variable not set")
		}
		sched = scheduler.NewSQSScheduler(sqs.NewFromConfig(cfg), sqsQueueURL, clock)
	}

	walletSvc := wallet.New(store, store, clock, logger)
	loanSvc := loans.New(store, store, clock, logger)
	engine := rosca.NewEngine(store, loanSvc, loanSvc, sched, clock, logger)
	savingsSvc := savings.New(store, store, loanSvc, clock, logger)

	if os.Getenv("FILL_SIMULATION") == "enabled" {
		sim := rosca.NewFillSimulator(store, rand.New(rand.NewSource(time.Now().UnixNano())), logger)
		go func() {
			for range time.Tick(30 * time.Second) {
				if err := sim.Step(context.Background()); err != nil {
					logger.Error("fill simulation step failed", slog.String("error", err.Error()))
				}
			}
		}()
	}

	router := handlers.NewRouter(handlers.Deps{
		Store:   store,
		Wallet:  walletSvc,
		Engine:  engine,
		Loans:   loanSvc,
		Savings: savingsSvc,
		Logger:  logger,
	})

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080" // Default port if not specified
	}

	log.Printf("Starting server on port %s", port)

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
