package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RunMigrations executes the schema touch-ups that deployments from older
// releases need before the indexes in CreateIndexes can be built.
func RunMigrations() error {
	log.Println("Running database migrations...")

	if err := unsetEmptyRemoteFolderIDs(); err != nil {
		return err
	}

	if err := backfillMappingTimestamps(); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// unsetEmptyRemoteFolderIDs removes empty remote_folder_id values written
// before the field became optional. The sparse unique index only tolerates
// unresolved mappings when they omit the field entirely.
func unsetEmptyRemoteFolderIDs() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := GetCollection(MappingsCollection)
	result, err := collection.UpdateMany(ctx,
		bson.M{"remote_folder_id": ""},
		bson.M{"$unset": bson.M{"remote_folder_id": ""}},
	)
	if err != nil {
		return fmt.Errorf("failed to unset empty remote folder ids: %v", err)
	}
	if result.ModifiedCount > 0 {
		log.Printf("Cleared empty remote_folder_id on %d mappings", result.ModifiedCount)
	}
	return nil
}

// backfillMappingTimestamps gives legacy mapping rows an updated_at so
// sorting by recency stays total.
func backfillMappingTimestamps() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := GetCollection(MappingsCollection)
	result, err := collection.UpdateMany(ctx,
		bson.M{"updated_at": bson.M{"$exists": false}},
		mongo.Pipeline{
			bson.D{{Key: "$set", Value: bson.M{"updated_at": "$created_at"}}},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to backfill mapping timestamps: %v", err)
	}
	if result.ModifiedCount > 0 {
		log.Printf("Backfilled updated_at on %d mappings", result.ModifiedCount)
	}
	return nil
}
