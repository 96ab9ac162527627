package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RemoteFileRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DriveItemID  string             `bson:"drive_item_id" json:"drive_item_id" validate:"required"`
	Name         string             `bson:"name" json:"name"`
	Path         string             `bson:"path" json:"path"`
	ParentID     string             `bson:"parent_id" json:"parent_id"`
	Size         int64              `bson:"size" json:"size"`
	MimeType     string             `bson:"mime_type" json:"mime_type"`
	IsFolder     bool               `bson:"is_folder" json:"is_folder"`
	LastModified time.Time          `bson:"last_modified" json:"last_modified"`
	WebURL       string             `bson:"web_url" json:"web_url"`
	DownloadURL  string             `bson:"download_url" json:"download_url"` // ephemeral, re-fetch before serving
	ETag         string             `bson:"etag" json:"etag"`
	ProjectCode  string             `bson:"project_code" json:"project_code"`
	Depth        int                `bson:"depth" json:"depth"`
	SyncedAt     time.Time          `bson:"synced_at" json:"synced_at"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
