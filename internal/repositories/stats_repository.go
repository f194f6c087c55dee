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

type StatsRepository struct {
	coll *mongo.Collection
}

func NewStatsRepository(db *mongo.Database) *StatsRepository {
	return &StatsRepository{coll: db.Collection("stats")}
}

// Get returns the singleton stats document, zero-valued when absent.
func (r *StatsRepository) Get(ctx context.Context) (*models.Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	stats := &models.Stats{}
	err := r.coll.FindOne(ctx, bson.M{}).Decode(stats)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.Stats{}, nil
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// RecordDownload bumps the bot-wide download and size totals.
func (r *StatsRepository) RecordDownload(ctx context.Context, size int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{},
		bson.M{
			"$inc": bson.M{"total_downloads": 1, "total_size": size},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// RecordUser bumps the bot-wide user total.
func (r *StatsRepository) RecordUser(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{},
		bson.M{
			"$inc": bson.M{"total_users": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}
