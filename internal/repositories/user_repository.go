package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tgleech/teraboxbot/internal/models"
)

const opTimeout = 5 * time.Second

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection("users")}
}

// GetByID returns the user document, or nil when the user is unknown.
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	user := &models.User{}
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Upsert creates the user document if missing, refreshing updated_at.
func (r *UserRepository) Upsert(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$set":         bson.M{"updated_at": now},
			"$setOnInsert": bson.M{"created_at": now, "downloads": 0, "last_verify": int64(0), "is_banned": false, "total_size": int64(0)},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// IncrementDownloads bumps the user's download counter and byte total.
func (r *UserRepository) IncrementDownloads(ctx context.Context, userID int64, size int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$inc": bson.M{"downloads": 1, "total_size": size},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// SetLastVerify records a completed verification.
func (r *UserRepository) SetLastVerify(ctx context.Context, userID int64, ts int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"last_verify": ts, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

// SetBanned flips the user's ban flag.
func (r *UserRepository) SetBanned(ctx context.Context, userID int64, banned bool) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"is_banned": banned, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

// Count returns the total number of known users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return r.coll.CountDocuments(ctx, bson.M{})
}
