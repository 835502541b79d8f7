package auth

import (
	"context"
	"errors"

	"Backend-PMS/src/metrics"
	"Backend-PMS/src/models"
	"Backend-PMS/src/services/accounts"
	"Backend-PMS/src/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// ResolveLogin authenticates without a known role. Collections are scanned in
// models.Roles order and the first one holding email decides the outcome: a
// wrong password there fails immediately. That is only correct while emails
// are unique across roles, which EmailTaken does not guarantee under races.
func (s *Service) ResolveLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := utils.ValidateStruct(models.LoginRequest{Email: email, Password: password}); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	email = models.NormalizeEmail(email)
	if err := s.checkLockout(ctx, email); err != nil {
		return nil, err
	}

	for _, role := range models.Roles {
		acc, err := s.store.FindByEmail(ctx, role, email, true)
		if errors.Is(err, accounts.ErrNotFound) {
			continue
		}
		if err != nil {
			s.metrics.AuthOperation("resolve_login", role, metrics.OutcomeError)
			return nil, internalError(err, "resolve_login", role)
		}

		if !s.verifyResolved(ctx, role, acc, password) {
			return nil, s.loginFailed(ctx, "resolve_login", role, email)
		}
		return s.loginSucceeded(ctx, "resolve_login", role, acc)
	}

	if err := s.limiter.Fail(ctx, email); err != nil {
		s.logger.Warn("Auth service: failed to count login attempt", "email", email, "error", err.Error())
	}
	s.logger.Info("Auth service: invalid credentials", "operation", "resolve_login", "email", email)
	return nil, utils.AuthFailure("Invalid credentials")
}

// verifyResolved checks a bcrypt hash, or with legacy plaintext enabled an
// unmigrated value, which is upgraded to a hash on a match.
func (s *Service) verifyResolved(ctx context.Context, role models.Role, acc models.Account, password string) bool {
	b := acc.Base()
	if IsHashed(b.Password) {
		return s.hasher.Verify(password, b.Password)
	}
	if !s.legacyPlaintext || !verifyLegacy(password, b.Password) {
		return false
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("Auth service: failed to hash legacy password", "role", role, "email", b.Email, "error", err.Error())
		return true
	}
	if _, err := s.store.UpdateByID(ctx, role, b.ID, accounts.Change{Set: bson.M{"password": hash}}); err != nil {
		s.logger.Error("Auth service: failed to upgrade legacy password", "role", role, "email", b.Email, "error", err.Error())
		return true
	}
	s.logger.Info("Auth service: legacy password upgraded", "role", role, "email", b.Email)
	return true
}
