// Package auth implements the account flows shared by every role: register,
// login, forgot/reset password, profile update and the role-agnostic login.
package auth

import (
	"context"
	"errors"
	"math"
	"time"

	"Backend-PMS/src/config"
	"Backend-PMS/src/logger"
	"Backend-PMS/src/metrics"
	"Backend-PMS/src/models"
	"Backend-PMS/src/services/accounts"
	"Backend-PMS/src/services/mail"
	"Backend-PMS/src/utils"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"
)

const operationTimeout = 5 * time.Second

// SessionIssuer signs session tokens. *utils.JWTManager implements it.
type SessionIssuer interface {
	GenerateJWT(accountID, role string) (string, error)
}

// ActivityRecorder is the non-blocking audit sink. *activity.Recorder implements it.
type ActivityRecorder interface {
	Record(ctx context.Context, email string, role models.Role, kind models.ActivityKind)
}

// Deps are the collaborators of a Service. Only Store and Sessions are required.
type Deps struct {
	Store    accounts.Store
	Sessions SessionIssuer
	Recorder ActivityRecorder
	Mailer   mail.ResetMailer // nil: forgot returns the raw token to the caller
	Limiter  *utils.LoginLimiter
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
}

type Service struct {
	store           accounts.Store
	hasher          *Hasher
	sessions        SessionIssuer
	recorder        ActivityRecorder
	mailer          mail.ResetMailer
	limiter         *utils.LoginLimiter
	metrics         *metrics.Metrics
	logger          *logger.Logger
	now             func() time.Time
	resetTTL        time.Duration
	legacyPlaintext bool
	appBaseURL      string
}

// LoginResult is returned by Login and ResolveLogin.
type LoginResult struct {
	Role    models.Role
	Token   string
	Account models.Account
}

// ForgotResult carries the raw token only when no mailer is configured.
type ForgotResult struct {
	Token      string
	Dispatched bool
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, string, models.Role, models.ActivityKind) {}

func NewService(cfg config.Auth, appBaseURL string, deps Deps) *Service {
	s := &Service{
		store:           deps.Store,
		hasher:          NewHasher(cfg.BcryptCost),
		sessions:        deps.Sessions,
		recorder:        deps.Recorder,
		mailer:          deps.Mailer,
		limiter:         deps.Limiter,
		metrics:         deps.Metrics,
		logger:          deps.Logger,
		now:             time.Now,
		resetTTL:        cfg.ResetTTL(),
		legacyPlaintext: cfg.LegacyPlaintext,
		appBaseURL:      appBaseURL,
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	if s.resetTTL <= 0 {
		s.resetTTL = 15 * time.Minute
	}
	return s
}

func internalError(err error, operation string, role models.Role) error {
	return oops.
		Code(utils.CodeInternal).
		With("operation", operation).
		With("role", role).
		Wrap(err)
}

func checkRole(role models.Role) error {
	if !role.Valid() {
		return utils.ValidationError("unknown role %q", role)
	}
	return nil
}

// Register creates acc in role's collection once no role holds its email.
func (s *Service) Register(ctx context.Context, role models.Role, acc models.Account, rawPassword string) (models.Account, error) {
	if err := checkRole(role); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	b := acc.Base()
	b.Email = models.NormalizeEmail(b.Email)
	if err := utils.ValidateStruct(models.RegisterCredentials{Email: b.Email, Password: rawPassword}); err != nil {
		return nil, err
	}

	if _, taken, err := EmailTaken(ctx, s.store, b.Email); err != nil {
		s.metrics.AuthOperation("register", role, metrics.OutcomeError)
		return nil, err
	} else if taken {
		s.metrics.AuthOperation("register", role, metrics.OutcomeFailure)
		return nil, duplicateEmail()
	}

	hash, _, err := s.hasher.HashIfChanged("", rawPassword)
	if err != nil {
		return nil, internalError(err, "register", role)
	}
	b.Password = hash
	b.Role = role
	b.ResetPasswordToken = ""
	b.ResetPasswordExpire = nil
	if admin, ok := acc.(*models.Admin); ok && admin.AccessLevel == "" {
		admin.AccessLevel = models.DefaultAccessLevel
	}

	if err := s.store.Create(ctx, acc); err != nil {
		s.metrics.AuthOperation("register", role, metrics.OutcomeError)
		return nil, internalError(err, "register", role)
	}

	s.logger.Info("Auth service: account registered", "role", role, "email", b.Email)
	s.metrics.AuthOperation("register", role, metrics.OutcomeSuccess)
	s.recorder.Record(ctx, b.Email, role, models.ActivitySignup)
	return models.StripSecrets(acc), nil
}

// Login authenticates against role's collection only. Unknown email and wrong
// password produce the same AuthFailure.
func (s *Service) Login(ctx context.Context, role models.Role, email, password string) (*LoginResult, error) {
	if err := checkRole(role); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(models.LoginRequest{Email: email, Password: password}); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	email = models.NormalizeEmail(email)
	if err := s.checkLockout(ctx, email); err != nil {
		s.metrics.AuthOperation("login", role, metrics.OutcomeFailure)
		return nil, err
	}

	acc, err := s.store.FindByEmail(ctx, role, email, true)
	if errors.Is(err, accounts.ErrNotFound) {
		return nil, s.loginFailed(ctx, "login", role, email)
	}
	if err != nil {
		s.metrics.AuthOperation("login", role, metrics.OutcomeError)
		return nil, internalError(err, "login", role)
	}
	if !s.hasher.Verify(password, acc.Base().Password) {
		return nil, s.loginFailed(ctx, "login", role, email)
	}

	return s.loginSucceeded(ctx, "login", role, acc)
}

func (s *Service) checkLockout(ctx context.Context, email string) error {
	blocked, remaining, err := s.limiter.Check(ctx, email)
	if err != nil {
		s.logger.Warn("Auth service: login limiter unavailable", "email", email, "error", err.Error())
		return nil
	}
	if !blocked {
		return nil
	}
	minutes := int(math.Ceil(remaining.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return oops.
		Code(utils.CodeRateLimited).
		With("email", email).
		Errorf("Too many login attempts. Please try again in %d minutes", minutes)
}

func (s *Service) loginFailed(ctx context.Context, operation string, role models.Role, email string) error {
	if err := s.limiter.Fail(ctx, email); err != nil {
		s.logger.Warn("Auth service: failed to count login attempt", "email", email, "error", err.Error())
	}
	s.logger.Info("Auth service: invalid credentials", "operation", operation, "role", role, "email", email)
	s.metrics.AuthOperation(operation, role, metrics.OutcomeFailure)
	return utils.AuthFailure("Invalid credentials")
}

func (s *Service) loginSucceeded(ctx context.Context, operation string, role models.Role, acc models.Account) (*LoginResult, error) {
	b := acc.Base()
	token, err := s.sessions.GenerateJWT(b.ID.Hex(), string(role))
	if err != nil {
		s.metrics.AuthOperation(operation, role, metrics.OutcomeError)
		return nil, internalError(err, operation, role)
	}
	if err := s.limiter.Reset(ctx, b.Email); err != nil {
		s.logger.Warn("Auth service: failed to reset login attempts", "email", b.Email, "error", err.Error())
	}

	s.metrics.AuthOperation(operation, role, metrics.OutcomeSuccess)
	s.recorder.Record(ctx, b.Email, role, models.ActivityLogin)
	return &LoginResult{Role: role, Token: token, Account: models.StripSecrets(acc)}, nil
}

// ForgotPassword issues a reset token for email. The outcome is the same
// whether or not the account exists; mail failures are logged only.
func (s *Service) ForgotPassword(ctx context.Context, role models.Role, email string) (*ForgotResult, error) {
	if err := checkRole(role); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(models.ForgotPasswordRequest{Email: email}); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	email = models.NormalizeEmail(email)
	acc, err := s.store.FindByEmail(ctx, role, email, false)
	if errors.Is(err, accounts.ErrNotFound) {
		s.logger.Info("Auth service: reset requested for unknown email", "role", role, "email", email)
		s.metrics.AuthOperation("forgot", role, metrics.OutcomeFailure)
		return &ForgotResult{}, nil
	}
	if err != nil {
		s.metrics.AuthOperation("forgot", role, metrics.OutcomeError)
		return nil, internalError(err, "forgot", role)
	}

	raw, err := s.issueResetToken(ctx, role, acc)
	if err != nil {
		s.metrics.AuthOperation("forgot", role, metrics.OutcomeError)
		return nil, err
	}
	s.metrics.AuthOperation("forgot", role, metrics.OutcomeSuccess)

	if s.mailer == nil {
		s.logger.Warn("Auth service: no mail transport, returning reset token to caller", "role", role, "email", email)
		return &ForgotResult{Token: raw}, nil
	}

	b := acc.Base()
	err = s.mailer.SendResetMail(ctx, mail.ResetMailPayload{
		To:               b.Email,
		Name:             b.Name,
		Role:             role,
		ResetURL:         mail.ResetURL(s.appBaseURL, raw),
		ExpiresInMinutes: int(s.resetTTL.Minutes()),
	})
	if err != nil {
		s.logger.Error("Auth service: failed to dispatch reset mail", "role", role, "email", email, "error", err.Error())
		return &ForgotResult{}, nil
	}
	return &ForgotResult{Dispatched: true}, nil
}

// issueResetToken overwrites any previous reset state of acc and returns the raw token.
func (s *Service) issueResetToken(ctx context.Context, role models.Role, acc models.Account) (string, error) {
	raw, digest, err := GenerateResetToken()
	if err != nil {
		return "", internalError(err, "issue_reset_token", role)
	}
	expire := s.now().Add(s.resetTTL).UTC()

	_, err = s.store.UpdateByID(ctx, role, acc.Base().ID, accounts.Change{
		Set: bson.M{
			"resetPasswordToken":  digest,
			"resetPasswordExpire": expire,
		},
	})
	if err != nil {
		return "", internalError(err, "issue_reset_token", role)
	}
	return raw, nil
}

// ResetPassword consumes a live reset token and sets newPassword.
func (s *Service) ResetPassword(ctx context.Context, role models.Role, token, newPassword string) error {
	if err := checkRole(role); err != nil {
		return err
	}
	if err := utils.ValidateStruct(models.ResetPasswordRequest{Password: newPassword}); err != nil {
		return err
	}
	if token == "" {
		return utils.AuthFailure("Invalid or expired token")
	}
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	digest := HashResetToken(token)
	acc, err := s.store.FindByResetToken(ctx, role, digest, s.now().UTC())
	if errors.Is(err, accounts.ErrNotFound) {
		s.metrics.AuthOperation("reset", role, metrics.OutcomeFailure)
		return utils.AuthFailure("Invalid or expired token")
	}
	if err != nil {
		s.metrics.AuthOperation("reset", role, metrics.OutcomeError)
		return internalError(err, "reset", role)
	}

	b := acc.Base()
	hash, changed, err := s.hasher.HashIfChanged(b.Password, newPassword)
	if err != nil {
		return internalError(err, "reset", role)
	}
	// the token must still be stored at write time; a concurrent reset that consumed it wins
	change := accounts.Change{
		If:    bson.M{"resetPasswordToken": digest},
		Set:   bson.M{},
		Unset: []string{"resetPasswordToken", "resetPasswordExpire"},
	}
	if changed {
		change.Set["password"] = hash
	}
	_, err = s.store.UpdateByID(ctx, role, b.ID, change)
	if errors.Is(err, accounts.ErrNotFound) {
		s.metrics.AuthOperation("reset", role, metrics.OutcomeFailure)
		return utils.AuthFailure("Invalid or expired token")
	}
	if err != nil {
		s.metrics.AuthOperation("reset", role, metrics.OutcomeError)
		return internalError(err, "reset", role)
	}

	s.logger.Info("Auth service: password reset", "role", role, "email", b.Email)
	s.metrics.AuthOperation("reset", role, metrics.OutcomeSuccess)
	return nil
}

// List returns every account of role with a reduced projection.
func (s *Service) List(ctx context.Context, role models.Role) ([]models.Account, error) {
	if err := checkRole(role); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	fields := []string{"name", "email", "role", "createdAt"}
	if role == models.RoleStudent {
		fields = append(fields, "resumeFileName")
	}
	list, err := s.store.List(ctx, role, fields...)
	if err != nil {
		return nil, internalError(err, "list", role)
	}
	return list, nil
}
