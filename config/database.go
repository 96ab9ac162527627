package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"projectdrive/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DatabaseManager handles database initialization and management
type DatabaseManager struct {
	manager *database.Manager
	config  *Config
}

// NewDatabaseManager creates a new database manager
func NewDatabaseManager(cfg *Config) *DatabaseManager {
	return &DatabaseManager{
		manager: database.GetManager(),
		config:  cfg,
	}
}

// Initialize initializes the database connection
func (dm *DatabaseManager) Initialize() error {
	log.Println("Initializing database connection...")

	err := dm.manager.Initialize(&database.Config{
		MongoURI:        dm.config.MongoURI,
		DatabaseName:    dm.config.DBName,
		MaxPoolSize:     100,
		MinPoolSize:     10,
		MaxConnIdleTime: 30 * time.Second,
		ConnectTimeout:  10 * time.Second,
		ServerTimeout:   10 * time.Second,
		SocketTimeout:   10 * time.Second,
	})
	if err != nil {
		return err
	}

	// Set global database connection for the database package
	database.SetClient(dm.manager.GetClient())
	database.SetDatabase(dm.manager.GetDatabase())

	log.Printf("Successfully connected to MongoDB database: %s", dm.config.DBName)
	return nil
}

// SetupDatabase performs initial database setup
func (dm *DatabaseManager) SetupDatabase() error {
	log.Println("Setting up database...")

	// Create indexes
	if err := dm.CreateIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %v", err)
	}

	// Run migrations
	if err := dm.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %v", err)
	}

	log.Println("Database setup completed successfully")
	return nil
}

// CreateIndexes creates all necessary database indexes
func (dm *DatabaseManager) CreateIndexes() error {
	return database.CreateIndexes()
}

// RunMigrations runs all database migrations
func (dm *DatabaseManager) RunMigrations() error {
	return database.RunMigrations()
}

// HealthCheck performs a database health check
func (dm *DatabaseManager) HealthCheck() error {
	return dm.manager.HealthCheck()
}

// CleanupOldData removes file index records that belong to projects whose
// mapping has been deleted. Normally the delete endpoint cleans these up;
// this job catches records left behind when that best-effort pass failed.
func (dm *DatabaseManager) CleanupOldData() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	mappings := dm.manager.GetCollection(database.MappingsCollection)
	fileIndex := dm.manager.GetCollection(database.FileIndexCollection)

	mappedCodes, err := mappings.Distinct(ctx, "project_code", bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list mapped projects: %v", err)
	}

	cutoff := time.Now().AddDate(0, 0, -7)
	result, err := fileIndex.DeleteMany(ctx, bson.M{
		"project_code": bson.M{"$nin": append(mappedCodes, ""), "$exists": true},
		"synced_at":    bson.M{"$lt": cutoff},
	})
	if err != nil {
		return fmt.Errorf("failed to cleanup orphaned index records: %v", err)
	}

	if result.DeletedCount > 0 {
		log.Printf("Cleaned up %d orphaned file index records", result.DeletedCount)
	}
	return nil
}

// Close closes the database connection
func (dm *DatabaseManager) Close() error {
	if err := dm.manager.Close(); err != nil {
		return err
	}
	database.SetClient(nil)
	database.SetDatabase(nil)
	return nil
}

// GetClient returns the MongoDB client
func (dm *DatabaseManager) GetClient() *mongo.Client {
	return dm.manager.GetClient()
}

// GetDatabase returns the MongoDB database
func (dm *DatabaseManager) GetDatabase() *mongo.Database {
	return dm.manager.GetDatabase()
}
