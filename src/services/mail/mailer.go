package mail

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ResetMailer dispatches a reset-password mail. The auth service treats a nil
// ResetMailer as "no mail transport" and returns the token to the caller instead.
type ResetMailer interface {
	SendResetMail(ctx context.Context, p ResetMailPayload) error
}

// Enqueuer is implemented by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueMailer hands the mail to the asynq worker.
type QueueMailer struct {
	client Enqueuer
}

func NewQueueMailer(client Enqueuer) *QueueMailer {
	return &QueueMailer{client: client}
}

func (q *QueueMailer) SendResetMail(ctx context.Context, p ResetMailPayload) error {
	task, err := NewResetPasswordMailTask(p)
	if err != nil {
		return fmt.Errorf("build reset mail task: %w", err)
	}
	_, err = q.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueName),
		asynq.MaxRetry(5),
		asynq.TaskID("reset-mail-"+uuid.NewString()),
	)
	if err != nil {
		return fmt.Errorf("enqueue reset mail: %w", err)
	}
	return nil
}

// DirectMailer sends synchronously; used when SMTP is configured without Redis.
type DirectMailer struct {
	transport Transport
}

func NewDirectMailer(transport Transport) *DirectMailer {
	return &DirectMailer{transport: transport}
}

func (d *DirectMailer) SendResetMail(_ context.Context, p ResetMailPayload) error {
	p.Normalize()
	return sendResetMail(d.transport, p)
}
