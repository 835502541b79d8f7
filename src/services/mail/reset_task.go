package mail

import (
	"encoding/json"
	"strings"

	"Backend-PMS/src/models"

	"github.com/hibiken/asynq"
)

const TypeResetPasswordMail = "auth:reset-password-mail"

// QueueName is the asynq queue reset mails are enqueued on.
const QueueName = "mail"

const resetMailSubject = "Reset your password"

type ResetMailPayload struct {
	To               string      `json:"to"`
	Name             string      `json:"name"`
	Role             models.Role `json:"role"`
	ResetURL         string      `json:"resetUrl"`
	ExpiresInMinutes int         `json:"expiresInMinutes"`
}

func (p *ResetMailPayload) Normalize() {
	p.To = strings.TrimSpace(p.To)
	p.Name = strings.TrimSpace(p.Name)
	p.ResetURL = strings.TrimSpace(p.ResetURL)
}

func NewResetPasswordMailTask(p ResetMailPayload) (*asynq.Task, error) {
	p.Normalize()

	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeResetPasswordMail, b), nil
}

// ResetURL builds the frontend link for a raw token.
func ResetURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/reset-password/" + token
}
