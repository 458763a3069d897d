package lambdafn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/ripple/notify"
)

// Worker drains the notification queue, dispatching each envelope to its
// recipients.
type Worker struct {
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

// NewWorker creates a queue worker. A nil logger falls back to
// slog.Default().
func NewWorker(dispatcher *notify.Dispatcher, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{dispatcher: dispatcher, logger: logger}
}

// HandleNotify processes one SQS batch. A malformed envelope is logged and
// dropped rather than retried; dispatch failures are joined into the
// returned error so the batch is redelivered.
func (w *Worker) HandleNotify(ctx context.Context, event events.SQSEvent) error {
	var errs []error
	for _, record := range event.Records {
		env, err := notify.DecodeEnvelope([]byte(record.Body))
		if err != nil {
			w.logger.Warn("dropping malformed envelope",
				"messageId", record.MessageId,
				"error", err,
			)
			continue
		}
		delivered, err := w.dispatcher.Dispatch(ctx, env)
		if err != nil {
			errs = append(errs, fmt.Errorf("dispatch message %s: %w", record.MessageId, err))
			continue
		}
		w.logger.Info("envelope dispatched",
			"messageId", record.MessageId,
			"delivered", delivered,
		)
	}
	return errors.Join(errs...)
}
