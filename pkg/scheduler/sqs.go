package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// sqsMaxDelay is the longest delay SQS accepts on a message. Ticks due
// further out are redelivered by the consumer re-enqueueing until due.
const sqsMaxDelay = 900 * time.Second

// SQSAPI is the subset of the SQS client used by the scheduler.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSScheduler implements the Scheduler interface using AWS SQS.
type SQSScheduler struct {
	Client   SQSAPI
	QueueURL string
	Clock    Clock
}

// NewSQSScheduler creates a new SQSScheduler.
func NewSQSScheduler(client SQSAPI, queueURL string, clock Clock) *SQSScheduler {
	return &SQSScheduler{
		Client:   client,
		QueueURL: queueURL,
		Clock:    clock,
	}
}

// Make sure we conform to the interface
var _ Scheduler = (*SQSScheduler)(nil)

// ScheduleDeduction sends the tick to SQS delayed until its due time.
func (s *SQSScheduler) ScheduleDeduction(ctx context.Context, tick *DeductionTick) error {
	body, err := json.Marshal(tick)
	if err != nil {
		return fmt.Errorf("failed to marshal deduction tick for SQS: %w", err)
	}

	delay := tick.DueAt.Sub(s.Clock.Now())
	if delay < 0 {
		delay = 0
	}
	if delay > sqsMaxDelay {
		delay = sqsMaxDelay
	}

	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(s.QueueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: int32(delay / time.Second),
	})
	if err != nil {
		return fmt.Errorf("failed to send deduction tick to SQS: %w", err)
	}
	return nil
}
