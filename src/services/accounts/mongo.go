package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Backend-PMS/src/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ Store = (*MongoStore)(nil)

// MongoStore keeps each role in its own collection (students, faculties, tpos, admins).
type MongoStore struct {
	collections map[models.Role]*mongo.Collection
	now         func() time.Time
}

// NewMongoStore binds the four role collections of db.
func NewMongoStore(db *mongo.Database) *MongoStore {
	collections := make(map[models.Role]*mongo.Collection, len(models.Roles))
	for _, role := range models.Roles {
		collections[role] = db.Collection(role.Collection())
	}
	return &MongoStore{collections: collections, now: time.Now}
}

func (s *MongoStore) collection(role models.Role) (*mongo.Collection, error) {
	coll, ok := s.collections[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return coll, nil
}

// EnsureIndexes creates the lookup indexes. email is deliberately not unique:
// uniqueness spans four collections and is enforced by the registration check.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	for _, role := range models.Roles {
		coll, _ := s.collection(role)
		_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}},
			{Keys: bson.D{{Key: "resetPasswordToken", Value: 1}}, Options: options.Index().SetSparse(true)},
		})
		if err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", role.Collection(), err)
		}
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, acc models.Account) error {
	b := acc.Base()
	coll, err := s.collection(b.Role)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	b.ID = primitive.NewObjectID()
	b.CreatedAt = now
	b.UpdatedAt = now

	if _, err := coll.InsertOne(ctx, acc); err != nil {
		return fmt.Errorf("failed to insert %s: %w", b.Role, err)
	}
	return nil
}

func (s *MongoStore) FindByEmail(ctx context.Context, role models.Role, email string, withPassword bool) (models.Account, error) {
	opts := options.FindOne()
	if p := projection(withPassword, nil); p != nil {
		opts.SetProjection(p)
	}
	return s.findOne(ctx, role, bson.M{"email": email}, opts)
}

func (s *MongoStore) FindByResetToken(ctx context.Context, role models.Role, digest string, now time.Time) (models.Account, error) {
	filter := bson.M{
		"resetPasswordToken":  digest,
		"resetPasswordExpire": bson.M{"$gt": now},
	}
	return s.findOne(ctx, role, filter, options.FindOne())
}

func (s *MongoStore) findOne(ctx context.Context, role models.Role, filter bson.M, opts *options.FindOneOptions) (models.Account, error) {
	coll, err := s.collection(role)
	if err != nil {
		return nil, err
	}

	acc := models.NewAccount(role)
	err = coll.FindOne(ctx, filter, opts).Decode(acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", role, err)
	}
	return acc, nil
}

func (s *MongoStore) UpdateByEmail(ctx context.Context, role models.Role, email string, change Change) (models.Account, error) {
	return s.update(ctx, role, bson.M{"email": email}, change)
}

func (s *MongoStore) UpdateByID(ctx context.Context, role models.Role, id primitive.ObjectID, change Change) (models.Account, error) {
	return s.update(ctx, role, bson.M{"_id": id}, change)
}

func (s *MongoStore) update(ctx context.Context, role models.Role, filter bson.M, change Change) (models.Account, error) {
	coll, err := s.collection(role)
	if err != nil {
		return nil, err
	}

	for k, v := range change.If {
		filter[k] = v
	}

	set := bson.M{}
	for k, v := range change.Set {
		set[k] = v
	}
	set["updatedAt"] = s.now().UTC()
	update := bson.M{"$set": set}
	if len(change.Unset) > 0 {
		unset := bson.M{}
		for _, k := range change.Unset {
			unset[k] = ""
		}
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(projection(false, nil))

	acc := models.NewAccount(role)
	err = coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", role, err)
	}
	return acc, nil
}

func (s *MongoStore) List(ctx context.Context, role models.Role, fields ...string) ([]models.Account, error) {
	coll, err := s.collection(role)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find().
		SetProjection(projection(false, fields)).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := coll.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", role, err)
	}
	defer cursor.Close(ctx)

	accounts := []models.Account{}
	for cursor.Next(ctx) {
		acc := models.NewAccount(role)
		if err := cursor.Decode(acc); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", role, err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, cursor.Err()
}
