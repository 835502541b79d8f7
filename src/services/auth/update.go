package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"Backend-PMS/src/metrics"
	"Backend-PMS/src/models"
	"Backend-PMS/src/services/accounts"
	"Backend-PMS/src/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// Update applies patch to the account holding email. Identity, audit and
// reset fields are never taken from the patch, neither is an admin's
// accessLevel. A password in the patch is hashed exactly once.
func (s *Service) Update(ctx context.Context, role models.Role, email string, patch map[string]any) (models.Account, error) {
	if err := checkRole(role); err != nil {
		return nil, err
	}
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, utils.ValidationError("Email is required")
	}
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	set, rawPassword, err := sanitizePatch(role, patch)
	if err != nil {
		return nil, err
	}

	var updated models.Account
	if rawPassword != "" {
		updated, err = s.updateWithPassword(ctx, role, email, set, rawPassword)
	} else {
		updated, err = s.store.UpdateByEmail(ctx, role, email, accounts.Change{Set: set})
	}
	if errors.Is(err, accounts.ErrNotFound) {
		s.metrics.AuthOperation("update", role, metrics.OutcomeFailure)
		return nil, utils.NotFoundError("User not found")
	}
	if err != nil {
		s.metrics.AuthOperation("update", role, metrics.OutcomeError)
		if utils.ErrorCode(err) != "" {
			return nil, err
		}
		return nil, internalError(err, "update", role)
	}

	s.metrics.AuthOperation("update", role, metrics.OutcomeSuccess)
	s.recorder.Record(ctx, email, role, models.ActivityProfileUpdate)
	return models.StripSecrets(updated), nil
}

// updateWithPassword loads the stored hash so HashIfChanged can compare, then
// writes the patch and the new hash in one update. Concurrent updates of the
// same account are last-write-wins.
func (s *Service) updateWithPassword(ctx context.Context, role models.Role, email string, set bson.M, rawPassword string) (models.Account, error) {
	acc, err := s.store.FindByEmail(ctx, role, email, true)
	if err != nil {
		return nil, err
	}
	b := acc.Base()

	hash, changed, err := s.hasher.HashIfChanged(b.Password, rawPassword)
	if err != nil {
		return nil, internalError(err, "update", role)
	}
	if changed {
		set["password"] = hash
	}
	return s.store.UpdateByID(ctx, role, b.ID, accounts.Change{Set: set})
}

// sanitizePatch keeps only the editable fields of role, coercing scalar values
// to strings, and pulls out the raw password.
func sanitizePatch(role models.Role, patch map[string]any) (bson.M, string, error) {
	editable := models.EditableFields(role)
	set := bson.M{}
	rawPassword := ""

	for key, value := range patch {
		if key == "password" {
			pw, ok := value.(string)
			if !ok && value != nil {
				return nil, "", utils.ValidationError("password must be a string")
			}
			rawPassword = pw
			continue
		}
		if _, ok := editable[key]; !ok {
			continue
		}
		str, err := scalarString(value)
		if err != nil {
			return nil, "", utils.ValidationError("%s %s", key, err.Error())
		}
		set[key] = str
	}
	return set, rawPassword, nil
}

func scalarString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return fmt.Sprintf("%t", v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int, int32, int64:
		return fmt.Sprintf("%d", v), nil
	default:
		return "", errors.New("must be a string or number")
	}
}

// NewAccountFromFields builds a role variant from a decoded request body with
// the same filtering and coercion as Update. email is accepted here, and so is
// an admin's accessLevel.
func NewAccountFromFields(role models.Role, fields map[string]any) (models.Account, string, error) {
	if err := checkRole(role); err != nil {
		return nil, "", err
	}
	set, rawPassword, err := sanitizePatch(role, fields)
	if err != nil {
		return nil, "", err
	}

	email, err := scalarString(fields["email"])
	if err != nil {
		return nil, "", utils.ValidationError("email %s", err.Error())
	}
	set["email"] = email
	if role == models.RoleAdmin {
		level, err := scalarString(fields["accessLevel"])
		if err != nil {
			return nil, "", utils.ValidationError("accessLevel %s", err.Error())
		}
		if level != "" {
			set["accessLevel"] = level
		}
	}

	raw, err := bson.Marshal(set)
	if err != nil {
		return nil, "", utils.ValidationError("invalid account fields: %v", err)
	}
	acc := models.NewAccount(role)
	if err := bson.Unmarshal(raw, acc); err != nil {
		return nil, "", utils.ValidationError("invalid account fields: %v", err)
	}
	acc.Base().Role = role
	return acc, rawPassword, nil
}
