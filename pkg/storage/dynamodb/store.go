// Package dynamodb implements the Storage interface on AWS DynamoDB
// across three tables: users (ledger records), groups (ROSCA catalog)
// and events (append-only action log).
package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/suprebose/wallet-platform/pkg/storage"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the store.
// Declared here so tests can substitute a mock.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client          DynamoDBAPI
	UsersTableName  string
	GroupsTableName string
	EventsTableName string
}

// New creates a new Store.
func New(client DynamoDBAPI, usersTable, groupsTable, eventsTable string) *Store {
	return &Store{
		Client:          client,
		UsersTableName:  usersTable,
		GroupsTableName: groupsTable,
		EventsTableName: eventsTable,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)
