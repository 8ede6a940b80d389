package repositories

import (
	"context"

	"safeher/models"
	"safeher/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// journeyDocID keys the single live journey document. There is only ever
// one journey at a time; a new journey overwrites the document.
const journeyDocID = "current"

type JourneyRepository struct {
	collection *mongo.Collection
}

func NewJourneyRepository(db *mongo.Database) *JourneyRepository {
	return &JourneyRepository{
		collection: db.Collection("journeys"),
	}
}

func (r *JourneyRepository) Save(ctx context.Context, state *models.JourneyState) error {
	doc := bson.M{
		"_id":   journeyDocID,
		"state": state,
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": journeyDocID}, doc, opts)
	if err != nil {
		return utils.NewStorageError("failed to save journey", err)
	}
	return nil
}

// Load returns the persisted journey, or nil when none has been saved yet.
func (r *JourneyRepository) Load(ctx context.Context) (*models.JourneyState, error) {
	var doc struct {
		State models.JourneyState `bson:"state"`
	}
	err := r.collection.FindOne(ctx, bson.M{"_id": journeyDocID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, utils.NewStorageError("failed to load journey", err)
	}
	return &doc.State, nil
}

func (r *JourneyRepository) Clear(ctx context.Context) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": journeyDocID})
	if err != nil {
		return utils.NewStorageError("failed to clear journey", err)
	}
	return nil
}
