package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSQS struct {
	mock.Mock
}

func (m *mockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.SendMessageOutput), args.Error(1)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func TestScheduleDeduction(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("Delays Until Due", func(t *testing.T) {
		mockClient := new(mockSQS)
		var sent *sqs.SendMessageInput
		mockClient.On("SendMessage", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			sent = args.Get(1).(*sqs.SendMessageInput)
		}).Return(&sqs.SendMessageOutput{}, nil)

		s := NewSQSScheduler(mockClient, "https://sqs.test/queue", fixedClock{now: now})
		tick := &DeductionTick{UserID: "u1", GroupID: "wk1", DueAt: now.Add(5 * time.Minute)}
		err := s.ScheduleDeduction(context.Background(), tick)

		assert.NoError(t, err)
		assert.Equal(t, int32(300), sent.DelaySeconds)
		assert.Equal(t, "https://sqs.test/queue", *sent.QueueUrl)

		var decoded DeductionTick
		assert.NoError(t, json.Unmarshal([]byte(*sent.MessageBody), &decoded))
		assert.Equal(t, "u1", decoded.UserID)
		assert.Equal(t, "wk1", decoded.GroupID)
		assert.True(t, decoded.DueAt.Equal(tick.DueAt))
		mockClient.AssertExpectations(t)
	})

	t.Run("Past Due Sends Immediately", func(t *testing.T) {
		mockClient := new(mockSQS)
		var sent *sqs.SendMessageInput
		mockClient.On("SendMessage", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			sent = args.Get(1).(*sqs.SendMessageInput)
		}).Return(&sqs.SendMessageOutput{}, nil)

		s := NewSQSScheduler(mockClient, "https://sqs.test/queue", fixedClock{now: now})
		err := s.ScheduleDeduction(context.Background(), &DeductionTick{UserID: "u1", GroupID: "wk1", DueAt: now.Add(-time.Hour)})

		assert.NoError(t, err)
		assert.Equal(t, int32(0), sent.DelaySeconds)
		mockClient.AssertExpectations(t)
	})

	t.Run("Far Future Clamps To SQS Max", func(t *testing.T) {
		mockClient := new(mockSQS)
		var sent *sqs.SendMessageInput
		mockClient.On("SendMessage", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			sent = args.Get(1).(*sqs.SendMessageInput)
		}).Return(&sqs.SendMessageOutput{}, nil)

		s := NewSQSScheduler(mockClient, "https://sqs.test/queue", fixedClock{now: now})
		err := s.ScheduleDeduction(context.Background(), &DeductionTick{UserID: "u1", GroupID: "wk1", DueAt: now.Add(7 * 24 * time.Hour)})

		assert.NoError(t, err)
		assert.Equal(t, int32(900), sent.DelaySeconds)
		mockClient.AssertExpectations(t)
	})

	t.Run("Send Failure Surfaces", func(t *testing.T) {
		mockClient := new(mockSQS)
		mockClient.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("queue unavailable"))

		s := NewSQSScheduler(mockClient, "https://sqs.test/queue", fixedClock{now: now})
		err := s.ScheduleDeduction(context.Background(), &DeductionTick{UserID: "u1", GroupID: "wk1", DueAt: now})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send deduction tick to SQS")
		mockClient.AssertExpectations(t)
	})
}
