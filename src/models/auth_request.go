package models

// LoginRequest body of POST /api/{role}/login and POST /api/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest body of POST /api/{role}/forgot
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

// ResetPasswordRequest body of POST /api/{role}/reset/:token
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// RegisterCredentials the part of a registration payload that never lands on the account as-is.
type RegisterCredentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
