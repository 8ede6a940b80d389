package database

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Database struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func Connect(databaseURL string) (*Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(databaseURL).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database("safeher")

	logrus.Info("Connected to MongoDB")

	database := &Database{
		Client: client,
		DB:     db,
	}

	if err := database.ensureIndexes(ctx); err != nil {
		logrus.WithError(err).Warn("Failed to create indexes")
	}

	return database, nil
}

func (d *Database) ensureIndexes(ctx context.Context) error {
	events := d.DB.Collection("safety_events")
	eventIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "severity", Value: 1}, {Key: "timestamp", Value: -1}}},
	}
	if _, err := events.Indexes().CreateMany(ctx, eventIndexes); err != nil {
		return err
	}

	contacts := d.DB.Collection("contacts")
	contactIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "phone", Value: 1}}},
	}
	if _, err := contacts.Indexes().CreateMany(ctx, contactIndexes); err != nil {
		return err
	}

	recordings := d.DB.Collection("recordings")
	recordingIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	}
	_, err := recordings.Indexes().CreateMany(ctx, recordingIndexes)
	return err
}

func (d *Database) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.Client.Disconnect(ctx)
}
