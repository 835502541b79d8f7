package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
)

// HandleResetPasswordMail sends the reset mail described by the task payload.
func HandleResetPasswordMail(transport Transport) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p ResetMailPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			// malformed payloads will never succeed
			return fmt.Errorf("decode reset mail payload: %v: %w", err, asynq.SkipRetry)
		}
		if p.To == "" {
			log.Println("⚠️ reset-mail: empty recipient, skip")
			return nil
		}

		return sendResetMail(transport, p)
	}
}

func sendResetMail(transport Transport, p ResetMailPayload) error {
	env, err := resetEnvelope(p)
	if err != nil {
		return err
	}
	if err := transport.Deliver(env); err != nil {
		return fmt.Errorf("send reset mail to %s: %w", p.To, err)
	}
	log.Printf("✅ reset-mail sent to=%s role=%s", p.To, p.Role)
	return nil
}
