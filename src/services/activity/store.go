package activity

import (
	"context"
	"fmt"
	"sync"

	"Backend-PMS/src/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is where login events live.
const CollectionName = "logins"

// MongoEventStore appends to the logins collection.
type MongoEventStore struct {
	coll *mongo.Collection
}

// NewMongoEventStore appends to coll, normally the CollectionName collection.
func NewMongoEventStore(coll *mongo.Collection) *MongoEventStore {
	return &MongoEventStore{coll: coll}
}

func (s *MongoEventStore) Insert(ctx context.Context, event *models.LoginEvent) error {
	event.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to insert login event: %w", err)
	}
	return nil
}

// MemoryEventStore keeps events in memory. Err, when set, is returned by every Insert.
type MemoryEventStore struct {
	mu     sync.Mutex
	events []models.LoginEvent
	Err    error
}

// NewMemoryEventStore returns an empty store.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{}
}

func (s *MemoryEventStore) Insert(_ context.Context, event *models.LoginEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	event.ID = primitive.NewObjectID()
	s.events = append(s.events, *event)
	return nil
}

// Events returns a copy of everything recorded so far.
func (s *MemoryEventStore) Events() []models.LoginEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.LoginEvent(nil), s.events...)
}
