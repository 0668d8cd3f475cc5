package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/suprebose/wallet-platform/pkg/loans"
	"github.com/suprebose/wallet-platform/pkg/rosca"
	"github.com/suprebose/wallet-platform/pkg/scheduler"
	"github.com/suprebose/wallet-platform/pkg/storage"
	dydbstore "github.com/suprebose/wallet-platform/pkg/storage/dynamodb"
)

var engine *rosca.Engine

func init() {
	// Load environment variables from .env file (useful for local testing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize dependencies once.
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
	store := dydbstore.New(dbClient, usersTable, groupsTable, eventsTable)

	sqsQueueURL := os.Getenv("SQS_QUEUE_URL")
	if sqsQueueURL == "" {
		log.Fatal("SQS_QUEUE_URL environment variable not set")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	clock := scheduler.SystemClock{}
	sched := scheduler.NewSQSScheduler(sqs.NewFromConfig(cfg), sqsQueueURL, clock)
	loanSvc := loans.New(store, store, clock, logger)
	engine = rosca.NewEngine(store, loanSvc, loanSvc, sched, clock, logger)
}

// HandleRequest processes deduction ticks and runs one period
// evaluation per tick.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	for _, message := range sqsEvent.Records {
		log.Printf("Processing message %s", message.MessageId)

		var tick scheduler.DeductionTick
		if err := json.Unmarshal([]byte(message.Body), &tick); err != nil {
			log.Printf("ERROR: failed to unmarshal deduction tick from SQS message %s: %v", message.MessageId, err)
			// Returning an error will cause SQS to retry the message, which is appropriate here.
			return err
		}

		result, err := engine.EvaluatePeriod(ctx, tick.UserID, tick.GroupID)
		if err != nil {
			// A short wallet is the member's problem, not the queue's.
			// The engine has recorded the prompt and re-enqueued the next
			// period's tick; retrying this message would re-prompt.
			if errors.Is(err, storage.ErrInsufficientFunds) {
				log.Printf("Skipping deduction for user %s in group %s: insufficient funds", tick.UserID, tick.GroupID)
				continue
			}
			log.Printf("ERROR: failed to evaluate period for user %s in group %s: %v", tick.UserID, tick.GroupID, err)
			return err
		}

		log.Printf("Evaluated period for user %s in group %s (contribution=%t payout=%t)",
			tick.UserID, tick.GroupID, result.ContributionApplied, result.PayoutApplied)
	}

	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
