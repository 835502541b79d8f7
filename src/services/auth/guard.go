package auth

import (
	"context"
	"errors"

	"Backend-PMS/src/models"
	"Backend-PMS/src/services/accounts"
	"Backend-PMS/src/utils"

	"github.com/samber/oops"
)

// EmailTaken scans every role collection, in models.Roles order, for email and
// returns the role holding it.
//
// The check and the following insert are separate round-trips, so two
// registrations racing into different collections can both pass.
func EmailTaken(ctx context.Context, store accounts.Store, email string) (models.Role, bool, error) {
	for _, role := range models.Roles {
		_, err := store.FindByEmail(ctx, role, email, false)
		if err == nil {
			return role, true, nil
		}
		if !errors.Is(err, accounts.ErrNotFound) {
			return "", false, oops.
				Code(utils.CodeInternal).
				With("operation", "email_taken").
				With("role", role).
				Wrapf(err, "failed to check email")
		}
	}
	return "", false, nil
}

func duplicateEmail() error {
	return oops.Code(utils.CodeDuplicateEmail).Errorf("Email already in use")
}
