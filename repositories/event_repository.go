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

type EventRepository struct {
	collection *mongo.Collection
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{
		collection: db.Collection("safety_events"),
	}
}

func (r *EventRepository) Create(ctx context.Context, event *models.SafetyEvent) error {
	_, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return utils.NewStorageError("failed to save event", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.SafetyEvent, error) {
	var event models.SafetyEvent
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("event")
		}
		return nil, utils.NewStorageError("failed to find event", err)
	}
	return &event, nil
}

func (r *EventRepository) Query(ctx context.Context, query models.EventQuery) ([]models.SafetyEvent, error) {
	filter := bson.M{}
	if query.Type != "" {
		filter["type"] = query.Type
	}
	if query.Severity != "" {
		filter["severity"] = query.Severity
	}
	timeFilter := bson.M{}
	if !query.From.IsZero() {
		timeFilter["$gte"] = query.From
	}
	if !query.To.IsZero() {
		timeFilter["$lte"] = query.To
	}
	if len(timeFilter) > 0 {
		filter["timestamp"] = timeFilter
	}

	limit := int64(query.Limit)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, utils.NewStorageError("failed to query events", err)
	}
	defer cursor.Close(ctx)

	events := []models.SafetyEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, utils.NewStorageError("failed to decode events", err)
	}
	return events, nil
}

// Resolve sets the resolution block. Everything else on the event stays
// immutable after insert.
func (r *EventRepository) Resolve(ctx context.Context, id, note string) (*models.SafetyEvent, error) {
	update := bson.M{
		"$set": bson.M{
			"resolution": models.EventResolution{
				Resolved:   true,
				Note:       note,
				ResolvedAt: time.Now(),
			},
		},
	}

	var event models.SafetyEvent
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&event)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("event")
		}
		return nil, utils.NewStorageError("failed to resolve event", err)
	}
	return &event, nil
}

func (r *EventRepository) Stats(ctx context.Context) (*models.EventStats, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, utils.NewStorageError("failed to count events", err)
	}

	stats := &models.EventStats{
		Total:      total,
		BySeverity: map[string]int64{},
		ByType:     map[string]int64{},
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$severity", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, utils.NewStorageError("failed to aggregate events", err)
	}
	var severityRows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &severityRows); err != nil {
		return nil, utils.NewStorageError("failed to decode stats", err)
	}
	for _, row := range severityRows {
		stats.BySeverity[row.ID] = row.Count
	}

	typePipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$type", "count": bson.M{"$sum": 1}}}},
	}
	typeCursor, err := r.collection.Aggregate(ctx, typePipeline)
	if err != nil {
		return nil, utils.NewStorageError("failed to aggregate events", err)
	}
	var typeRows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := typeCursor.All(ctx, &typeRows); err != nil {
		return nil, utils.NewStorageError("failed to decode stats", err)
	}
	for _, row := range typeRows {
		stats.ByType[row.ID] = row.Count
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	var last models.SafetyEvent
	err = r.collection.FindOne(ctx, bson.M{}, opts).Decode(&last)
	if err == nil {
		stats.LastEvent = &last.Timestamp
	} else if err != mongo.ErrNoDocuments {
		return nil, utils.NewStorageError("failed to find latest event", err)
	}

	return stats, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return utils.NewStorageError("failed to delete event", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("event")
	}
	return nil
}

func (r *EventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, utils.NewStorageError("failed to prune events", err)
	}
	return result.DeletedCount, nil
}

func (r *EventRepository) DeleteAll(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return utils.NewStorageError("failed to clear events", err)
	}
	return nil
}
