package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Queue hands an envelope off for asynchronous delivery.
type Queue interface {
	Send(ctx context.Context, env Envelope) error
}

// SQSClient is the subset of the SQS API the queue uses.
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSQueue sends envelopes to an SQS queue for a worker to dispatch. The
// envelope's delivery delay becomes the SQS message delay, so the worker
// receives the message only once the delay has elapsed.
type SQSQueue struct {
	client   SQSClient
	queueURL string
}

// NewSQSQueue creates a queue sender for the given queue URL.
func NewSQSQueue(client SQSClient, queueURL string) *SQSQueue {
	return &SQSQueue{client: client, queueURL: queueURL}
}

// Send enqueues one envelope. The delay is stripped from the body so the
// dispatcher does not wait a second time.
func (q *SQSQueue) Send(ctx context.Context, env Envelope) error {
	if err := env.Validate(); err != nil {
		return err
	}
	delay := env.DelaySeconds
	env.DelaySeconds = 0

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(q.queueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: int32(delay),
	})
	if err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

// LocalQueue dispatches envelopes in-process, for single-node deployments
// with no broker between producer and dispatcher.
type LocalQueue struct {
	dispatcher *Dispatcher
}

// NewLocalQueue creates an in-process queue over the given dispatcher.
func NewLocalQueue(d *Dispatcher) *LocalQueue {
	return &LocalQueue{dispatcher: d}
}

// Send dispatches the envelope immediately on the caller's goroutine. The
// envelope's delay, if any, is honored by the dispatcher itself.
func (q *LocalQueue) Send(ctx context.Context, env Envelope) error {
	_, err := q.dispatcher.Dispatch(ctx, env)
	return err
}
