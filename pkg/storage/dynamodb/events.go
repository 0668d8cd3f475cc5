package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/suprebose/wallet-platform/pkg/models"
	"github.com/suprebose/wallet-platform/pkg/storage"
)

// userEventsIndex orders each user's events by timestamp.
const userEventsIndex = "user_id-timestamp-index"

// eventRecord is the persisted shape of an event. Metadata is handled
// separately so the tagged-variant payload round-trips through its
// concrete type.
type eventRecord struct {
	ID         string            `dynamodbav:"id"`
	UserID     string            `dynamodbav:"user_id"`
	UserName   string            `dynamodbav:"user_name"`
	UserEmail  string            `dynamodbav:"user_email,omitempty"`
	ActionType string            `dynamodbav:"action_type"`
	Timestamp  time.Time         `dynamodbav:"timestamp"`
	SessionID  string            `dynamodbav:"session_id,omitempty"`
	Device     models.DeviceInfo `dynamodbav:"device"`
}

// AppendEvent durably appends one event to the log.
func (s *Store) AppendEvent(ctx context.Context, ev *models.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}

	rec := eventRecord{
		ID:         ev.ID,
		UserID:     ev.UserID,
		UserName:   ev.UserName,
		UserEmail:  ev.UserEmail,
		ActionType: string(ev.ActionType),
		Timestamp:  ev.Timestamp,
		SessionID:  ev.SessionID,
		Device:     ev.Device,
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if ev.Metadata != nil {
		metaMap, err := attributevalue.MarshalMap(ev.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal event metadata: %w", err)
		}
		item["metadata"] = &types.AttributeValueMemberM{Value: metaMap}
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.EventsTableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"), // The log is append-only.
	}
	if _, err := s.Client.PutItem(ctx, input); err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return fmt.Errorf("event %s already appended", ev.ID)
		}
		return fmt.Errorf("failed to append event to DynamoDB: %w", err)
	}
	return nil
}

// QueryEvents reads the log, scoped by the filter, in chronological
// order. Per-user reads use the timestamp-ordered GSI; global reads
// scan and sort.
func (s *Store) QueryEvents(ctx context.Context, filter storage.EventFilter) ([]models.Event, error) {
	var items []map[string]types.AttributeValue

	if filter.UserID != "" {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.EventsTableName),
			IndexName:              aws.String(userEventsIndex),
			KeyConditionExpression: aws.String("user_id = :uid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uid": &types.AttributeValueMemberS{Value: filter.UserID},
			},
			ScanIndexForward: aws.Bool(true),
		}
		if filter.ActionType != "" {
			input.FilterExpression = aws.String("action_type = :action")
			input.ExpressionAttributeValues[":action"] = &types.AttributeValueMemberS{Value: string(filter.ActionType)}
		}
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query events: %w", err)
		}
		items = result.Items
	} else {
		input := &dynamodb.ScanInput{
			TableName: aws.String(s.EventsTableName),
		}
		if filter.ActionType != "" {
			input.FilterExpression = aws.String("action_type = :action")
			input.ExpressionAttributeValues = map[string]types.AttributeValue{
				":action": &types.AttributeValueMemberS{Value: string(filter.ActionType)},
			}
		}
		result, err := s.Client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan events table: %w", err)
		}
		items = result.Items
	}

	events := make([]models.Event, 0, len(items))
	for _, item := range items {
		ev, err := unmarshalEvent(item)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, nil
}

func unmarshalEvent(item map[string]types.AttributeValue) (*models.Event, error) {
	var rec eventRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	ev := &models.Event{
		ID:         rec.ID,
		UserID:     rec.UserID,
		UserName:   rec.UserName,
		UserEmail:  rec.UserEmail,
		ActionType: models.ActionType(rec.ActionType),
		Timestamp:  rec.Timestamp,
		SessionID:  rec.SessionID,
		Device:     rec.Device,
	}

	if metaAttr, ok := item["metadata"].(*types.AttributeValueMemberM); ok {
		meta := models.MetadataFor(ev.ActionType)
		if meta != nil {
			if err := attributevalue.UnmarshalMap(metaAttr.Value, meta); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event metadata: %w", err)
			}
			ev.Metadata = meta
		}
	}
	return ev, nil
}
