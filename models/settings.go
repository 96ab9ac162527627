package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SyncSetting struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Key       string             `bson:"key" json:"key" validate:"required"`
	Value     interface{}        `bson:"value" json:"value"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// RootFolderConfiguration is the singleton pointing at the remote folder
// under which all project folders live. FolderID and FolderName are
// resolved from the remote store when reachable; FolderPath is the source
// of truth.
type RootFolderConfiguration struct {
	FolderPath string    `bson:"folder_path" json:"folder_path" validate:"required"`
	FolderID   string    `bson:"folder_id" json:"folder_id"`
	FolderName string    `bson:"folder_name" json:"folder_name"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}
