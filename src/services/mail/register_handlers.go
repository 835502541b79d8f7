package mail

import (
	"Backend-PMS/src/config"

	"github.com/hibiken/asynq"
)

// RegisterHandlers ลงทะเบียน handler ของ package mail
func RegisterHandlers(mux *asynq.ServeMux, cfg config.SMTP) error {
	// ถ้า SMTP env ยังไม่ครบ จะ fail ตอน start worker
	transport, err := NewSMTPTransport(cfg)
	if err != nil {
		return err
	}

	mux.HandleFunc(TypeResetPasswordMail, HandleResetPasswordMail(transport))
	return nil
}
