package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suprebose/wallet-platform/pkg/models"
	"github.com/suprebose/wallet-platform/pkg/storage"
)

// GetGroup retrieves a catalog entry from DynamoDB.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.GroupsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: groupID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get group from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}

	var group models.Group
	if err := attributevalue.UnmarshalMap(result.Item, &group); err != nil {
		return nil, fmt.Errorf("failed to unmarshal group: %w", err)
	}
	return &group, nil
}

// ListGroups retrieves the full catalog from DynamoDB.
func (s *Store) ListGroups(ctx context.Context) ([]models.Group, error) {
	result, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.GroupsTableName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan groups table: %w", err)
	}

	var groups []models.Group
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &groups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal groups: %w", err)
	}
	return groups, nil
}

// PutGroup creates or replaces a catalog entry.
func (s *Store) PutGroup(ctx context.Context, g *models.Group) error {
	item, err := attributevalue.MarshalMap(g)
	if err != nil {
		return fmt.Errorf("failed to marshal group: %w", err)
	}

	if _, err := s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.GroupsTableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to put group in DynamoDB: %w", err)
	}
	return nil
}

// AdjustMemberCount changes the group's member count with the capacity
// check and the increment as one conditional update, so concurrent
// joins can never overbook the group.
func (s *Store) AdjustMemberCount(ctx context.Context, groupID string, delta int, expected int) (*models.Group, error) {
	conditions := []string{"attribute_exists(id)"}
	values := map[string]types.AttributeValue{
		":delta": numberAV(int64(delta)),
	}

	if delta > 0 {
		conditions = append(conditions, "current_member_count <= member_capacity - :delta")
	} else {
		conditions = append(conditions, "current_member_count >= :min_count")
		values[":min_count"] = numberAV(int64(-delta))
	}
	if expected >= 0 {
		conditions = append(conditions, "current_member_count = :expected")
		values[":expected"] = numberAV(int64(expected))
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.GroupsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: groupID},
		},
		UpdateExpression:          aws.String("SET current_member_count = current_member_count + :delta"),
		ConditionExpression:       aws.String(strings.Join(conditions, " AND ")),
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, s.classifyCapacityConditionFailure(ctx, groupID, delta, expected)
		}
		return nil, fmt.Errorf("failed to adjust member count: %w", err)
	}

	var group models.Group
	if err := attributevalue.UnmarshalMap(result.Attributes, &group); err != nil {
		return nil, fmt.Errorf("failed to unmarshal group after update: %w", err)
	}
	return &group, nil
}

func (s *Store) classifyCapacityConditionFailure(ctx context.Context, groupID string, delta, expected int) error {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if expected >= 0 && group.CurrentMemberCount != expected {
		return storage.ErrStale
	}
	if delta > 0 && !group.Open() {
		return storage.ErrGroupFull
	}
	return storage.ErrStale
}
