package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
)

type Ledger interface {
	AddMoneyIn(ctx context.Context, params cashflow.MoneyParams) (*cashflow.Entry, error)
}

// Worker drains the reconcile queue into the ledger. A message is deleted only after its entry
// is stored, so failed postings become visible again and are retried. Each job carries a source
// reference, so a message redelivered after a failed delete is not posted twice.
type Worker struct {
	client   SQSAPI
	queueURL string
	ledger   Ledger
	logger   *slog.Logger

	WaitTimeSeconds int32
	MaxMessages     int32
	ErrorBackoff    time.Duration
}

func NewWorker(client SQSAPI, queueURL string, ledger Ledger, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		client:          client,
		queueURL:        queueURL,
		ledger:          ledger,
		logger:          logger.With("component", "reconcile_worker"),
		WaitTimeSeconds: 20,
		MaxMessages:     10,
		ErrorBackoff:    5 * time.Second,
	}
}

// Run long-polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("reconcile worker started", "queue_url", w.queueURL)

	for {
		if ctx.Err() != nil {
			w.logger.Info("reconcile worker stopped")
			return nil
		}

		if _, err := w.Poll(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}

			w.logger.Error("failed to receive reconcile jobs", "error", err)

			select {
			case <-ctx.Done():
			case <-time.After(w.ErrorBackoff):
			}
		}
	}
}

// Poll receives one batch and reports how many jobs reached the ledger.
func (w *Worker) Poll(ctx context.Context) (int, error) {
	out, err := w.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(w.queueURL),
		MaxNumberOfMessages: w.MaxMessages,
		WaitTimeSeconds:     w.WaitTimeSeconds,
	})
	if err != nil {
		return 0, err
	}

	posted := 0

	for _, msg := range out.Messages {
		var job Job
		if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &job); err != nil {
			w.logger.Error("discarding malformed reconcile job", "message_id", aws.ToString(msg.MessageId), "error", err)
			w.delete(ctx, msg.ReceiptHandle)

			continue
		}

		entry, err := w.ledger.AddMoneyIn(ctx, job.MoneyParams())
		if errors.Is(err, cashflow.ErrAlreadyRecorded) {
			w.logger.Info("reconcile job already posted", "job_id", job.ID, "payment_id", job.PaymentID)
			w.delete(ctx, msg.ReceiptHandle)

			continue
		}

		if errors.Is(err, apperr.ErrValidation) {
			w.logger.Error("discarding invalid reconcile job", "job_id", job.ID, "payment_id", job.PaymentID, "error", err)
			w.delete(ctx, msg.ReceiptHandle)

			continue
		}

		if err != nil {
			w.logger.Warn("reconcile job failed, will retry",
				"job_id", job.ID, "payment_id", job.PaymentID, "error", err)

			continue
		}

		w.logger.Info("reconciled ledger entry",
			"job_id", job.ID, "payment_id", job.PaymentID, "order_ref", job.OrderRef, "entry_id", entry.ID)

		w.delete(ctx, msg.ReceiptHandle)
		posted++
	}

	return posted, nil
}

func (w *Worker) delete(ctx context.Context, receipt *string) {
	_, err := w.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(w.queueURL),
		ReceiptHandle: receipt,
	})
	if err != nil {
		w.logger.Error("failed to delete reconcile message", "error", err)
	}
}
