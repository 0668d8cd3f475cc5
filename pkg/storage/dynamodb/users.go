package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suprebose/wallet-platform/pkg/models"
	"github.com/suprebose/wallet-platform/pkg/storage"
)

func numberAV(n int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}

// GetUser retrieves a user's ledger record from DynamoDB.
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.UsersTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: userID},
		},
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(result.Item, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

// CreateUser creates a new ledger record in DynamoDB.
func (s *Store) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.UsersTableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"), // Prevent overwriting existing records.
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, fmt.Errorf("user %s already exists", u.ID)
		}
		return nil, fmt.Errorf("failed to create user in DynamoDB: %w", err)
	}
	return u, nil
}

// ListUsers retrieves all ledger records from DynamoDB.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	result, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.UsersTableName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan users table: %w", err)
	}

	var users []models.User
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal users: %w", err)
	}
	return users, nil
}

// ClaimToken atomically grants the one-time research token. The update
// only succeeds while has_claimed_token is still false.
func (s *Store) ClaimToken(ctx context.Context, userID string, amount int64) (*models.User, error) {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.UsersTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression:    aws.String("SET wallet_balance = wallet_balance + :amount, has_claimed_token = :claimed"),
		ConditionExpression: aws.String("attribute_exists(id) AND has_claimed_token = :unclaimed"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":amount":    numberAV(amount),
			":claimed":   &types.AttributeValueMemberBOOL{Value: true},
			":unclaimed": &types.AttributeValueMemberBOOL{Value: false},
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			// Distinguish a missing record from a repeat claim.
			if _, getErr := s.GetUser(ctx, userID); getErr != nil {
				return nil, getErr
			}
			return nil, storage.ErrAlreadyClaimed
		}
		return nil, fmt.Errorf("failed to claim token: %w", err)
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(result.Attributes, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user after claim: %w", err)
	}
	return &user, nil
}

// ApplyWalletDelta atomically adjusts the wallet balance and applies the
// holdings update in a single conditional UpdateItem.
func (s *Store) ApplyWalletDelta(ctx context.Context, userID string, delta int64, update *storage.HoldingsUpdate) (*models.User, error) {
	sets := []string{"wallet_balance = wallet_balance + :delta"}
	conditions := []string{"attribute_exists(id)"}
	names := map[string]string{}
	values := map[string]types.AttributeValue{
		":delta": numberAV(delta),
	}

	if delta < 0 {
		conditions = append(conditions, "wallet_balance >= :debit")
		values[":debit"] = numberAV(-delta)
	}

	if update != nil {
		if update.Membership != nil {
			memberAV, err := attributevalue.Marshal(update.Membership)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal membership: %w", err)
			}
			names["#gid"] = update.Membership.GroupID
			sets = append(sets, "joined_groups.#gid = :membership")
			values[":membership"] = memberAV

			if update.ExpectContributions != nil {
				conditions = append(conditions, "joined_groups.#gid.contributions_made = :expect_contribs")
				values[":expect_contribs"] = numberAV(int64(*update.ExpectContributions))
			}
			if update.ExpectPayoutPending {
				conditions = append(conditions, "(attribute_not_exists(joined_groups.#gid) OR joined_groups.#gid.payout_received = :pending)")
				values[":pending"] = &types.AttributeValueMemberBOOL{Value: false}
			}
		}
		for i, loan := range update.Loans {
			namePH := fmt.Sprintf("#loan%d", i)
			valuePH := fmt.Sprintf(":loan%d", i)
			loanAV, err := attributevalue.Marshal(loan)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal loan: %w", err)
			}
			names[namePH] = loan.ID
			sets = append(sets, fmt.Sprintf("loans.%s = %s", namePH, valuePH))
			values[valuePH] = loanAV
		}
		if update.TargetGoal != nil {
			goalAV, err := attributevalue.Marshal(update.TargetGoal)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal target goal: %w", err)
			}
			names["#goal"] = update.TargetGoal.ID
			sets = append(sets, "target_savings.#goal = :goal")
			values[":goal"] = goalAV
		}
		if update.FixedSavings != nil {
			fsAV, err := attributevalue.Marshal(update.FixedSavings)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal fixed savings: %w", err)
			}
			sets = append(sets, "fixed_savings = list_append(if_not_exists(fixed_savings, :empty_list), :fixed)")
			values[":fixed"] = &types.AttributeValueMemberL{Value: []types.AttributeValue{fsAV}}
			values[":empty_list"] = &types.AttributeValueMemberL{Value: []types.AttributeValue{}}
		}
		if update.Investment != nil {
			invAV, err := attributevalue.Marshal(update.Investment)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal investment: %w", err)
			}
			sets = append(sets, "investments = list_append(if_not_exists(investments, :empty_list), :investment)")
			values[":investment"] = &types.AttributeValueMemberL{Value: []types.AttributeValue{invAV}}
			values[":empty_list"] = &types.AttributeValueMemberL{Value: []types.AttributeValue{}}
		}
		if update.LinkBank {
			sets = append(sets, "bank_linked = :linked")
			values[":linked"] = &types.AttributeValueMemberBOOL{Value: true}
		}
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.UsersTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String(strings.Join(conditions, " AND ")),
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, s.classifyWalletConditionFailure(ctx, userID, delta)
		}
		return nil, fmt.Errorf("failed to apply wallet update: %w", err)
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(result.Attributes, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user after update: %w", err)
	}
	return &user, nil
}

// classifyWalletConditionFailure re-reads the record to turn a generic
// conditional-check failure into the precise domain error.
func (s *Store) classifyWalletConditionFailure(ctx context.Context, userID string, delta int64) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if delta < 0 && user.WalletBalance < -delta {
		return storage.ErrInsufficientFunds
	}
	return storage.ErrStale
}
