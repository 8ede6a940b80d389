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

type ContactRepository struct {
	collection *mongo.Collection
}

func NewContactRepository(db *mongo.Database) *ContactRepository {
	return &ContactRepository{
		collection: db.Collection("contacts"),
	}
}

func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = contact.CreatedAt
	_, err := r.collection.InsertOne(ctx, contact)
	if err != nil {
		return utils.NewStorageError("failed to save contact", err)
	}
	return nil
}

func (r *ContactRepository) FindByID(ctx context.Context, id string) (*models.Contact, error) {
	var contact models.Contact
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&contact)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("contact")
		}
		return nil, utils.NewStorageError("failed to find contact", err)
	}
	return &contact, nil
}

func (r *ContactRepository) FindByPhone(ctx context.Context, phone string) (*models.Contact, error) {
	var contact models.Contact
	err := r.collection.FindOne(ctx, bson.M{"phone": phone}).Decode(&contact)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, utils.NewStorageError("failed to find contact", err)
	}
	return &contact, nil
}

func (r *ContactRepository) List(ctx context.Context) ([]models.Contact, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, utils.NewStorageError("failed to list contacts", err)
	}
	defer cursor.Close(ctx)

	contacts := []models.Contact{}
	if err := cursor.All(ctx, &contacts); err != nil {
		return nil, utils.NewStorageError("failed to decode contacts", err)
	}
	return contacts, nil
}

func (r *ContactRepository) Update(ctx context.Context, id string, update bson.M) (*models.Contact, error) {
	update["updatedAt"] = time.Now()

	var contact models.Contact
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": update}, opts).Decode(&contact)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("contact")
		}
		return nil, utils.NewStorageError("failed to update contact", err)
	}
	return &contact, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return utils.NewStorageError("failed to delete contact", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("contact")
	}
	return nil
}

func (r *ContactRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, utils.NewStorageError("failed to count contacts", err)
	}
	return count, nil
}
