package services

import (
	"context"
	"fmt"
	"time"

	"projectdrive/database"
	"projectdrive/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MappingStore is the project-to-folder mapping registry as consumed by
// the provisioning and reconciliation services.
type MappingStore interface {
	GetMapping(projectCode string) (*models.ProjectFolderMapping, error)
	GetAllMappings() ([]models.ProjectFolderMapping, error)
	CreateMapping(mapping *models.ProjectFolderMapping) error
	DeleteMapping(projectCode string) (bool, error)
	FindOrphanProjects(allProjects []models.Project) ([]models.Project, error)
}

// MappingService persists project-to-folder mappings in MongoDB. No two
// mappings may share a project code; replacing one is delete-then-create.
type MappingService struct {
	mappingCollection *mongo.Collection
}

// NewMappingService creates a new mapping service instance
func NewMappingService() *MappingService {
	collections := database.NewCollections()
	return &MappingService{
		mappingCollection: collections.Mappings(),
	}
}

// GetMapping returns the mapping for a project code.
func (ms *MappingService) GetMapping(projectCode string) (*models.ProjectFolderMapping, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var mapping models.ProjectFolderMapping
	err := ms.mappingCollection.FindOne(ctx, bson.M{"project_code": projectCode}).Decode(&mapping)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("no folder mapping for project %s", projectCode))
		}
		return nil, fmt.Errorf("failed to get mapping: %v", err)
	}

	return &mapping, nil
}

// GetAllMappings returns every mapping, ordered by project code.
func (ms *MappingService) GetAllMappings() ([]models.ProjectFolderMapping, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "project_code", Value: 1}})
	cursor, err := ms.mappingCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get mappings: %v", err)
	}
	defer cursor.Close(ctx)

	var mappings []models.ProjectFolderMapping
	if err := cursor.All(ctx, &mappings); err != nil {
		return nil, fmt.Errorf("failed to decode mappings: %v", err)
	}

	return mappings, nil
}

// CreateMapping inserts a new mapping. Creation is checked, not
// idempotent: an existing mapping for the same code fails with
// DuplicateMapping and the caller must delete it first to replace it.
func (ms *MappingService) CreateMapping(mapping *models.ProjectFolderMapping) error {
	if mapping == nil || mapping.ProjectCode == "" {
		return models.NewDomainError(models.KindMissingParameter, "project code is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Check for existing mapping
	count, err := ms.mappingCollection.CountDocuments(ctx, bson.M{"project_code": mapping.ProjectCode})
	if err != nil {
		return fmt.Errorf("failed to check existing mapping: %v", err)
	}
	if count > 0 {
		return models.NewDomainError(models.KindDuplicateMapping, fmt.Sprintf("a folder mapping for project %s already exists", mapping.ProjectCode))
	}

	if mapping.ID.IsZero() {
		mapping.ID = primitive.NewObjectID()
	}
	now := time.Now()
	mapping.CreatedAt = now
	mapping.UpdatedAt = now

	_, err = ms.mappingCollection.InsertOne(ctx, mapping)
	if err != nil {
		// The unique index backstops the pre-check under concurrent creates.
		if mongo.IsDuplicateKeyError(err) {
			return models.NewDomainError(models.KindDuplicateMapping, fmt.Sprintf("a folder mapping for project %s already exists", mapping.ProjectCode))
		}
		return fmt.Errorf("failed to create mapping: %v", err)
	}

	return nil
}

// DeleteMapping removes the mapping for a project code and reports whether
// one existed.
func (ms *MappingService) DeleteMapping(projectCode string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := ms.mappingCollection.DeleteOne(ctx, bson.M{"project_code": projectCode})
	if err != nil {
		return false, fmt.Errorf("failed to delete mapping: %v", err)
	}

	return result.DeletedCount > 0, nil
}

// FindOrphanProjects returns the projects that have no folder mapping yet,
// preserving the input order.
func (ms *MappingService) FindOrphanProjects(allProjects []models.Project) ([]models.Project, error) {
	mappings, err := ms.GetAllMappings()
	if err != nil {
		return nil, err
	}

	mapped := make(map[string]bool, len(mappings))
	for _, mapping := range mappings {
		mapped[mapping.ProjectCode] = true
	}

	orphans := []models.Project{}
	for _, project := range allProjects {
		if !mapped[project.Code] {
			orphans = append(orphans, project)
		}
	}

	return orphans, nil
}
