package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Test connection. A failed ping still returns the client: the driver
	// reconnects lazily, so the service can start before Mongo is up.
	err = client.Ping(ctx, nil)
	if err != nil {
		return client, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	// Create indexes
	err = createIndexes(client, cfg.DBName)
	if err != nil {
		return client, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}

func createIndexes(client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	// PDFs collection indexes
	pdfsCollection := db.Collection("pdfs")
	pdfIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "filename", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "upload_time", Value: -1}},
		},
	}
	_, err := pdfsCollection.Indexes().CreateMany(context.Background(), pdfIndexes)
	if err != nil {
		return err
	}

	// Request log collections: the active store and the legacy query_logs
	// store that is still read at fetch time.
	for _, name := range []string{"logs", "query_logs"} {
		logsCollection := db.Collection(name)
		logIndexes := []mongo.IndexModel{
			{
				Keys: bson.D{{Key: "timestamp", Value: -1}},
			},
			{
				Keys: bson.D{{Key: "endpoint", Value: 1}},
			},
		}
		_, err = logsCollection.Indexes().CreateMany(context.Background(), logIndexes)
		if err != nil {
			return err
		}
	}

	return nil
}
