package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectFolderMapping struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectCode    string             `bson:"project_code" json:"project_code" validate:"required"`
	RemoteFolderID string             `bson:"remote_folder_id,omitempty" json:"remote_folder_id"`
	FolderPath     string             `bson:"folder_path" json:"folder_path"`
	FolderName     string             `bson:"folder_name" json:"folder_name"`
	WebURL         string             `bson:"web_url" json:"web_url"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
