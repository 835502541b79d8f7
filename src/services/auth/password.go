package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies account passwords with bcrypt.
type Hasher struct {
	cost     int
	generate func(password []byte, cost int) ([]byte, error)
}

// NewHasher returns a Hasher using cost; out-of-range costs fall back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost, generate: bcrypt.GenerateFromPassword}
}

func (h *Hasher) Hash(raw string) (string, error) {
	hashed, err := h.generate([]byte(raw), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// HashIfChanged returns the value to persist for a password write. prevHash is
// the stored value (empty for new accounts). An empty raw, or a raw equal to
// what is already stored, keeps prevHash and reports changed=false.
func (h *Hasher) HashIfChanged(prevHash, raw string) (hash string, changed bool, err error) {
	if raw == "" || raw == prevHash {
		return prevHash, false, nil
	}
	hash, err = h.Hash(raw)
	if err != nil {
		return "", false, err
	}
	return hash, true, nil
}

// Verify compares raw against a bcrypt hash. Malformed hashes never match.
func (h *Hasher) Verify(raw, storedHash string) bool {
	if !IsHashed(storedHash) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(raw)) == nil
}

// IsHashed reports whether stored looks like a bcrypt hash.
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2")
}

// verifyLegacy compares a raw password against an unmigrated plaintext value.
func verifyLegacy(raw, stored string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(raw), []byte(stored)) == 1
}
