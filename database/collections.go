package database

import "go.mongodb.org/mongo-driver/mongo"

// Collection names as constants to prevent typos
const (
	MappingsCollection     = "project_folder_mappings"
	FileIndexCollection    = "remote_file_index"
	ProjectsCollection     = "projects"
	SyncSettingsCollection = "sync_settings"
)

// Collections provides typed access to all collections
type Collections struct {
	manager *Manager
}

// NewCollections creates a new collections instance
func NewCollections() *Collections {
	return &Collections{
		manager: GetManager(),
	}
}

func (c *Collections) Mappings() *mongo.Collection {
	return c.manager.GetCollection(MappingsCollection)
}

func (c *Collections) FileIndex() *mongo.Collection {
	return c.manager.GetCollection(FileIndexCollection)
}

// Projects is the bookkeeping application's project registry. Read-only
// from this service.
func (c *Collections) Projects() *mongo.Collection {
	return c.manager.GetCollection(ProjectsCollection)
}

func (c *Collections) SyncSettings() *mongo.Collection {
	return c.manager.GetCollection(SyncSettingsCollection)
}
