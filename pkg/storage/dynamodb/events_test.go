package dynamodb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/suprebose/wallet-platform/pkg/models"
	"github.com/suprebose/wallet-platform/pkg/storage"
	"github.com/suprebose/wallet-platform/pkg/storage/dynamodb/mocks"
)

func eventItem(t *testing.T, ev *models.Event) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(eventRecord{
		ID:         ev.ID,
		UserID:     ev.UserID,
		UserName:   ev.UserName,
		ActionType: string(ev.ActionType),
		Timestamp:  ev.Timestamp,
	})
	assert.NoError(t, err)
	if ev.Metadata != nil {
		metaMap, err := attributevalue.MarshalMap(ev.Metadata)
		assert.NoError(t, err)
		item["metadata"] = &types.AttributeValueMemberM{Value: metaMap}
	}
	return item
}

func TestAppendEvent(t *testing.T) {
	t.Run("Persists Metadata Alongside The Record", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		var put *dynamodb.PutItemInput
		mockClient.On("PutItem", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			put = args.Get(1).(*dynamodb.PutItemInput)
		}).Return(&dynamodb.PutItemOutput{}, nil)

		store := New(mockClient, "users", "groups", "events")
		ev := &models.Event{
			UserID:     "u1",
			UserName:   "Amina",
			ActionType: models.ActionLoanPromptShown,
			Timestamp:  testTime(),
			Metadata:   &models.LoanPromptMeta{Reason: "rosca_join", Shortfall: 3000},
		}
		err := store.AppendEvent(context.Background(), ev)

		assert.NoError(t, err)
		assert.NotEmpty(t, ev.ID)
		assert.Equal(t, "attribute_not_exists(id)", *put.ConditionExpression)
		assert.Contains(t, put.Item, "metadata")
		mockClient.AssertExpectations(t)
	})

	t.Run("Duplicate ID Rejected", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		store := New(mockClient, "users", "groups", "events")
		err := store.AppendEvent(context.Background(), &models.Event{ID: "ev1", UserID: "u1", ActionType: models.ActionTokenClaim})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already appended")
		mockClient.AssertExpectations(t)
	})
}

func TestQueryEvents(t *testing.T) {
	t.Run("Per User Reads The Ordered Index", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		ev := &models.Event{
			ID:         "ev1",
			UserID:     "u1",
			ActionType: models.ActionLoanPromptShown,
			Timestamp:  testTime(),
			Metadata:   &models.LoanPromptMeta{Reason: "rosca_join", Shortfall: 3000},
		}
		var query *dynamodb.QueryInput
		mockClient.On("Query", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			query = args.Get(1).(*dynamodb.QueryInput)
		}).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{eventItem(t, ev)}}, nil)

		store := New(mockClient, "users", "groups", "events")
		events, err := store.QueryEvents(context.Background(), storage.EventFilter{UserID: "u1"})

		assert.NoError(t, err)
		assert.Equal(t, userEventsIndex, *query.IndexName)
		if assert.Len(t, events, 1) {
			// The tagged payload comes back as its concrete type.
			meta, ok := events[0].Metadata.(*models.LoanPromptMeta)
			if assert.True(t, ok) {
				assert.Equal(t, "rosca_join", meta.Reason)
				assert.Equal(t, int64(3000), meta.Shortfall)
			}
		}
		mockClient.AssertExpectations(t)
	})

	t.Run("Global Reads Scan With Action Filter", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		var scan *dynamodb.ScanInput
		mockClient.On("Scan", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			scan = args.Get(1).(*dynamodb.ScanInput)
		}).Return(&dynamodb.ScanOutput{}, nil)

		store := New(mockClient, "users", "groups", "events")
		events, err := store.QueryEvents(context.Background(), storage.EventFilter{ActionType: models.ActionTokenClaim})

		assert.NoError(t, err)
		assert.Empty(t, events)
		assert.Equal(t, "action_type = :action", *scan.FilterExpression)
		mockClient.AssertExpectations(t)
	})
}
