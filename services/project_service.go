package services

import (
	"context"
	"fmt"
	"time"

	"projectdrive/database"
	"projectdrive/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProjectStore is the read-only view of the bookkeeping application's
// project registry consumed by provisioning and reconciliation.
type ProjectStore interface {
	GetProjectByCode(code string) (*models.Project, error)
	GetActiveProjects() ([]models.Project, error)
}

// ProjectService reads the project registry. The bookkeeping application
// owns these documents; this service never writes them.
type ProjectService struct {
	projectCollection *mongo.Collection
}

// NewProjectService creates a new project service instance
func NewProjectService() *ProjectService {
	collections := database.NewCollections()
	return &ProjectService{
		projectCollection: collections.Projects(),
	}
}

// GetProjectByCode returns the project with the given code.
func (ps *ProjectService) GetProjectByCode(code string) (*models.Project, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var project models.Project
	err := ps.projectCollection.FindOne(ctx, bson.M{"code": code}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("project %s not found", code))
		}
		return nil, fmt.Errorf("failed to get project: %v", err)
	}

	return &project, nil
}

// GetActiveProjects returns every active project ordered by code.
func (ps *ProjectService) GetActiveProjects() ([]models.Project, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})
	cursor, err := ps.projectCollection.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get projects: %v", err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %v", err)
	}

	return projects, nil
}
