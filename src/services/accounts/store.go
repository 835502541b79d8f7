// Package accounts is the credential store: one collection per role, shared base fields.
package accounts

import (
	"context"
	"errors"
	"time"

	"Backend-PMS/src/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when no account matches the lookup.
var ErrNotFound = errors.New("account not found")

// ErrUnknownRole is returned for a role without a collection.
var ErrUnknownRole = errors.New("unknown role")

// Change is a partial update: Set keys are written, Unset keys are removed.
// When If is non-empty the document must also hold each of its key/value
// pairs, otherwise the update reports ErrNotFound. The store always stamps updatedAt.
type Change struct {
	If    bson.M
	Set   bson.M
	Unset []string
}

// Store persists accounts per role. Reads exclude the password hash unless asked for.
type Store interface {
	Create(ctx context.Context, acc models.Account) error
	FindByEmail(ctx context.Context, role models.Role, email string, withPassword bool) (models.Account, error)
	FindByResetToken(ctx context.Context, role models.Role, digest string, now time.Time) (models.Account, error)
	UpdateByEmail(ctx context.Context, role models.Role, email string, change Change) (models.Account, error)
	UpdateByID(ctx context.Context, role models.Role, id primitive.ObjectID, change Change) (models.Account, error)
	List(ctx context.Context, role models.Role, fields ...string) ([]models.Account, error)
}

// projection builds the read projection. Without explicit fields everything but the hash is returned.
func projection(withPassword bool, fields []string) bson.M {
	if len(fields) > 0 {
		p := bson.M{}
		for _, f := range fields {
			if f == "password" && !withPassword {
				continue
			}
			p[f] = 1
		}
		p["role"] = 1
		return p
	}
	if withPassword {
		return nil
	}
	return bson.M{"password": 0}
}
