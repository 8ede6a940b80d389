package repositories

import (
	"context"
	"time"

	"safeher/models"
	"safeher/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RecordingRepository struct {
	collection *mongo.Collection
}

func NewRecordingRepository(db *mongo.Database) *RecordingRepository {
	return &RecordingRepository{
		collection: db.Collection("recordings"),
	}
}

func (r *RecordingRepository) Create(ctx context.Context, recording *models.Recording) error {
	_, err := r.collection.InsertOne(ctx, recording)
	if err != nil {
		return utils.NewStorageError("failed to save recording", err)
	}
	return nil
}

// List returns recording metadata newest first, excluding payload bytes.
func (r *RecordingRepository) List(ctx context.Context) ([]models.Recording, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetProjection(bson.M{"payload": 0})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, utils.NewStorageError("failed to list recordings", err)
	}
	defer cursor.Close(ctx)

	recordings := []models.Recording{}
	if err := cursor.All(ctx, &recordings); err != nil {
		return nil, utils.NewStorageError("failed to decode recordings", err)
	}
	return recordings, nil
}

func (r *RecordingRepository) FindByID(ctx context.Context, id string) (*models.Recording, error) {
	var recording models.Recording
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&recording)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("recording")
		}
		return nil, utils.NewStorageError("failed to find recording", err)
	}
	return &recording, nil
}

func (r *RecordingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return utils.NewStorageError("failed to delete recording", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("recording")
	}
	return nil
}

func (r *RecordingRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, utils.NewStorageError("failed to prune recordings", err)
	}
	return result.DeletedCount, nil
}
