package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"projectdrive/models"
	"projectdrive/remotedrive"

	"github.com/sirupsen/logrus"
)

// FileService serves per-file remote operations: fresh download links,
// content passthrough and search. Download URLs in the index are treated
// as expired and always re-fetched from the drive before use.
type FileService struct {
	drive remotedrive.Client
	index FileIndexStore
}

// NewFileService creates a new file service instance
func NewFileService(drive remotedrive.Client, index FileIndexStore) *FileService {
	return &FileService{
		drive: drive,
		index: index,
	}
}

// GetDownloadURL fetches a fresh ephemeral download link for a file and
// refreshes the index entry on the way.
func (fs *FileService) GetDownloadURL(fileID string) (string, error) {
	if strings.TrimSpace(fileID) == "" {
		return "", models.NewDomainError(models.KindMissingParameter, "file id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	item, err := fs.drive.GetItem(ctx, fileID)
	if err != nil {
		return "", err
	}
	if item.IsFolder {
		return "", models.NewDomainError(models.KindNotFound, fmt.Sprintf("%s is a folder and has no downloadable content", fileID))
	}
	if item.DownloadURL == "" {
		return "", models.NewDomainError(models.KindNotFound, fmt.Sprintf("no download url available for %s", fileID))
	}

	fs.refreshIndexEntry(item)
	return item.DownloadURL, nil
}

// DownloadContent streams the file content from the drive. The caller
// owns the returned reader and must close it.
func (fs *FileService) DownloadContent(fileID string) (io.ReadCloser, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "file id is required")
	}

	// No deadline here: the caller keeps streaming the body after this
	// method returns, and cancelling the context would cut it off.
	return fs.drive.DownloadContent(context.Background(), fileID)
}

// UploadContent replaces the file content on the drive and refreshes the
// index entry with what the drive confirmed.
func (fs *FileService) UploadContent(fileID string, content io.Reader, size int64) (*models.RemoteFileRecord, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "file id is required")
	}
	if content == nil {
		return nil, models.NewDomainError(models.KindMissingParameter, "content is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	item, err := fs.drive.UploadContent(ctx, fileID, content, size)
	if err != nil {
		return nil, err
	}

	return fs.refreshIndexEntry(item), nil
}

// Search runs a remote drive search and returns transient records. The
// results are not persisted; only scans write the index.
func (fs *FileService) Search(query string, limit int) ([]*models.RemoteFileRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "a search query is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	items, err := fs.drive.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	records := make([]*models.RemoteFileRecord, 0, len(items))
	for _, item := range items {
		records = append(records, recordFromItem(item, "", "", 0))
	}

	return records, nil
}

// refreshIndexEntry mirrors fresh item metadata into the index when the
// item is already indexed, keeping its project stamp and path.
func (fs *FileService) refreshIndexEntry(item *remotedrive.Item) *models.RemoteFileRecord {
	existing, err := fs.index.GetByItemID(item.ID)
	if err != nil {
		return recordFromItem(item, "", "", 0)
	}

	path := existing.Path
	if path == "" {
		path = item.Path
	}
	record := recordFromItem(item, path, existing.ProjectCode, existing.Depth)
	if err := fs.index.UpsertRecord(record); err != nil {
		logrus.WithField("item", item.ID).WithError(err).Warn("file index refresh failed")
	}
	return record
}
