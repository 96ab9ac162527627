package remotedrive

import (
	"context"
	"io"
	"time"
)

// RootItemID is the provider alias for the drive root folder.
const RootItemID = "root"

// Client defines the common interface to the remote drive provider.
// Implementations classify every provider failure into a
// *models.DomainError before returning it; raw provider errors never
// leave this package.
type Client interface {
	// Item lookups
	GetItem(ctx context.Context, itemID string) (*Item, error)
	GetItemByPath(ctx context.Context, path string) (*Item, error)
	ListChildren(ctx context.Context, folderID string) ([]*Item, error)

	// Mutations
	CreateFolder(ctx context.Context, parentID, name string) (*Item, error)
	UpdateItem(ctx context.Context, itemID string, patch ItemPatch) (*Item, error)

	// Content
	DownloadContent(ctx context.Context, itemID string) (io.ReadCloser, error)
	UploadContent(ctx context.Context, itemID string, content io.Reader, size int64) (*Item, error)

	// Search
	Search(ctx context.Context, query string, limit int) ([]*Item, error)

	// Health
	Ping(ctx context.Context) error
}

// Item represents one entry in the remote drive, file or folder.
type Item struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	ParentID     string    `json:"parentId"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimeType"`
	IsFolder     bool      `json:"isFolder"`
	LastModified time.Time `json:"lastModified"`
	WebURL       string    `json:"webUrl"`
	DownloadURL  string    `json:"downloadUrl"`
	ETag         string    `json:"eTag"`
}

// ItemPatch carries the mutable item fields. Setting both Name and
// ParentID moves and renames in a single provider request.
type ItemPatch struct {
	Name     string `json:"name,omitempty"`
	ParentID string `json:"parentId,omitempty"`
}

// childrenPage is one page of a folder listing.
type childrenPage struct {
	Value    []*Item `json:"value"`
	NextLink string  `json:"nextLink"`
}

// searchPage is the search response envelope.
type searchPage struct {
	Value []*Item `json:"value"`
}
