package accounts

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"Backend-PMS/src/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps BSON documents per role in process memory. It backs
// STORE_DRIVER=memory and the service tests, and applies the same
// projection and $set/$unset semantics as MongoStore.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[models.Role][]bson.M
	now  func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[models.Role][]bson.M), now: time.Now}
}

// SetClock overrides the time source used for timestamps.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// toDoc round-trips v through BSON so stored values have driver types (DateTime, ObjectID).
func toDoc(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func decode(role models.Role, doc bson.M, proj bson.M) (models.Account, error) {
	view := bson.M{}
	include := false
	for _, v := range proj {
		if v == 1 {
			include = true
			break
		}
	}
	for k, v := range doc {
		if include {
			if _, ok := proj[k]; !ok && k != "_id" {
				continue
			}
		} else if flag, ok := proj[k]; ok && flag == 0 {
			continue
		}
		view[k] = v
	}

	raw, err := bson.Marshal(view)
	if err != nil {
		return nil, err
	}
	acc := models.NewAccount(role)
	if err := bson.Unmarshal(raw, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *MemoryStore) Create(_ context.Context, acc models.Account) error {
	b := acc.Base()
	if !b.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, b.Role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	b.ID = primitive.NewObjectID()
	b.CreatedAt = now
	b.UpdatedAt = now

	doc, err := toDoc(acc)
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", b.Role, err)
	}
	s.docs[b.Role] = append(s.docs[b.Role], doc)
	return nil
}

func (s *MemoryStore) find(role models.Role, match func(bson.M) bool) (bson.M, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	for _, doc := range s.docs[role] {
		if match(doc) {
			return doc, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindByEmail(_ context.Context, role models.Role, email string, withPassword bool) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.find(role, func(d bson.M) bool { return d["email"] == email })
	if err != nil {
		return nil, err
	}
	return decode(role, doc, projection(withPassword, nil))
}

func (s *MemoryStore) FindByResetToken(_ context.Context, role models.Role, digest string, now time.Time) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.find(role, func(d bson.M) bool {
		if d["resetPasswordToken"] != digest {
			return false
		}
		expire, ok := d["resetPasswordExpire"].(primitive.DateTime)
		return ok && expire.Time().After(now)
	})
	if err != nil {
		return nil, err
	}
	return decode(role, doc, nil)
}

func (s *MemoryStore) UpdateByEmail(_ context.Context, role models.Role, email string, change Change) (models.Account, error) {
	return s.update(role, func(d bson.M) bool { return d["email"] == email }, change)
}

func (s *MemoryStore) UpdateByID(_ context.Context, role models.Role, id primitive.ObjectID, change Change) (models.Account, error) {
	return s.update(role, func(d bson.M) bool { return d["_id"] == id }, change)
}

func (s *MemoryStore) update(role models.Role, match func(bson.M) bool, change Change) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.find(role, func(d bson.M) bool {
		if !match(d) {
			return false
		}
		for k, v := range change.If {
			if d[k] != v {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	for k, v := range change.Set {
		set[k] = v
	}
	set["updatedAt"] = s.now().UTC()
	normalized, err := toDoc(set)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", role, err)
	}
	for k, v := range normalized {
		doc[k] = v
	}
	for _, k := range change.Unset {
		delete(doc, k)
	}
	return decode(role, doc, projection(false, nil))
}

func (s *MemoryStore) List(_ context.Context, role models.Role, fields ...string) ([]models.Account, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := append([]bson.M(nil), s.docs[role]...)
	sort.SliceStable(docs, func(i, j int) bool {
		ci, _ := docs[i]["createdAt"].(primitive.DateTime)
		cj, _ := docs[j]["createdAt"].(primitive.DateTime)
		return ci < cj
	})

	proj := projection(false, fields)
	accounts := make([]models.Account, 0, len(docs))
	for _, doc := range docs {
		acc, err := decode(role, doc, proj)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", role, err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}
