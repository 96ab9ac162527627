package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	client   *mongo.Client
	database *mongo.Database
)

// SetClient sets the global MongoDB client (called by DatabaseManager)
func SetClient(c *mongo.Client) {
	client = c
}

// SetDatabase sets the global MongoDB database (called by DatabaseManager)
func SetDatabase(db *mongo.Database) {
	database = db
}

// GetClient returns the MongoDB client
func GetClient() *mongo.Client {
	return client
}

// GetDatabase returns the MongoDB database
func GetDatabase() *mongo.Database {
	return database
}

// GetCollection returns a MongoDB collection
func GetCollection(collectionName string) *mongo.Collection {
	if database == nil {
		panic(fmt.Sprintf("database not initialized when trying to get collection: %s. Make sure DatabaseManager.Initialize() is called first.", collectionName))
	}
	return database.Collection(collectionName)
}

// Disconnect closes the MongoDB connection
func Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if client != nil {
		if err := client.Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to disconnect from MongoDB: %v", err)
		}
		log.Println("Disconnected from MongoDB")
	}

	return nil
}

// Ping checks the database connection
func Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if client == nil {
		return fmt.Errorf("database client not initialized")
	}

	return client.Ping(ctx, readpref.Primary())
}

// CreateIndexes creates necessary database indexes
func CreateIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("Creating database indexes...")

	// Mapping collection: one mapping per project, one project per remote
	// folder. remote_folder_id stays unset until resolved, hence sparse.
	mappingsCollection := GetCollection(MappingsCollection)
	mappingIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "remote_folder_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	if _, err := mappingsCollection.Indexes().CreateMany(ctx, mappingIndexes); err != nil {
		return fmt.Errorf("failed to create mapping indexes: %v", err)
	}

	// File index collection
	fileIndexCollection := GetCollection(FileIndexCollection)
	fileIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "drive_item_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "project_code", Value: 1}, {Key: "path", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "parent_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "project_code", Value: 1}, {Key: "is_folder", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "synced_at", Value: -1}},
		},
	}

	if _, err := fileIndexCollection.Indexes().CreateMany(ctx, fileIndexes); err != nil {
		return fmt.Errorf("failed to create file index indexes: %v", err)
	}

	// Projects collection indexes
	projectsCollection := GetCollection(ProjectsCollection)
	projectIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "is_active", Value: 1}},
		},
	}

	if _, err := projectsCollection.Indexes().CreateMany(ctx, projectIndexes); err != nil {
		return fmt.Errorf("failed to create project indexes: %v", err)
	}

	// Settings collection indexes
	settingsCollection := GetCollection(SyncSettingsCollection)
	settingIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := settingsCollection.Indexes().CreateMany(ctx, settingIndexes); err != nil {
		return fmt.Errorf("failed to create setting indexes: %v", err)
	}

	log.Println("Database indexes created successfully")
	return nil
}
