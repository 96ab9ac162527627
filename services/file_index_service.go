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

// FileIndexStore is the local index of remote files as consumed by the
// scan, move and file services.
type FileIndexStore interface {
	UpsertRecord(record *models.RemoteFileRecord) error
	UpsertRecords(records []*models.RemoteFileRecord) (int, error)
	GetByItemID(driveItemID string) (*models.RemoteFileRecord, error)
}

// FileIndexService persists RemoteFileRecord entries in MongoDB, keyed by
// the drive item id. The index is derived data: the remote drive is the
// source of truth and every write here is a create-or-update.
type FileIndexService struct {
	fileCollection *mongo.Collection
}

// NewFileIndexService creates a new file index service instance
func NewFileIndexService() *FileIndexService {
	collections := database.NewCollections()
	return &FileIndexService{
		fileCollection: collections.FileIndex(),
	}
}

// UpsertRecord creates or refreshes the index entry for a drive item.
// An empty project code never clears a code stamped by an earlier scan.
func (fs *FileIndexService) UpsertRecord(record *models.RemoteFileRecord) error {
	if record == nil || record.DriveItemID == "" {
		return fmt.Errorf("drive item id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"drive_item_id": record.DriveItemID}
	update := bson.M{
		"$set":         fs.updateFields(record, now),
		"$setOnInsert": bson.M{"created_at": now},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := fs.fileCollection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert file record: %v", err)
	}

	return nil
}

// UpsertRecords writes a batch of records in one unordered bulk operation
// and returns the number of records written.
func (fs *FileIndexService) UpsertRecords(records []*models.RemoteFileRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	writes := make([]mongo.WriteModel, 0, len(records))
	for _, record := range records {
		if record == nil || record.DriveItemID == "" {
			continue
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"drive_item_id": record.DriveItemID}).
			SetUpdate(bson.M{
				"$set":         fs.updateFields(record, now),
				"$setOnInsert": bson.M{"created_at": now},
			}).
			SetUpsert(true))
	}
	if len(writes) == 0 {
		return 0, nil
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := fs.fileCollection.BulkWrite(ctx, writes, opts); err != nil {
		return 0, fmt.Errorf("failed to persist file records: %v", err)
	}

	return len(writes), nil
}

// GetByItemID returns the index entry for a drive item id.
func (fs *FileIndexService) GetByItemID(driveItemID string) (*models.RemoteFileRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var record models.RemoteFileRecord
	err := fs.fileCollection.FindOne(ctx, bson.M{"drive_item_id": driveItemID}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("file %s is not indexed", driveItemID))
		}
		return nil, fmt.Errorf("failed to get file record: %v", err)
	}

	return &record, nil
}

// GetProjectFiles returns one page of the indexed records for a project,
// ordered by path.
func (fs *FileIndexService) GetProjectFiles(projectCode string, page, limit int) ([]models.RemoteFileRecord, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	skip := (page - 1) * limit

	filter := bson.M{"project_code": projectCode}

	total, err := fs.fileCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count file records: %v", err)
	}

	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "path", Value: 1}})

	cursor, err := fs.fileCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get file records: %v", err)
	}
	defer cursor.Close(ctx)

	var records []models.RemoteFileRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, fmt.Errorf("failed to decode file records: %v", err)
	}

	return records, total, nil
}

// DeleteProjectRecords drops every index entry of a project, used when its
// mapping is removed.
func (fs *FileIndexService) DeleteProjectRecords(projectCode string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := fs.fileCollection.DeleteMany(ctx, bson.M{"project_code": projectCode})
	if err != nil {
		return 0, fmt.Errorf("failed to delete file records: %v", err)
	}

	return result.DeletedCount, nil
}

func (fs *FileIndexService) updateFields(record *models.RemoteFileRecord, now time.Time) bson.M {
	fields := bson.M{
		"name":          record.Name,
		"path":          record.Path,
		"parent_id":     record.ParentID,
		"size":          record.Size,
		"mime_type":     record.MimeType,
		"is_folder":     record.IsFolder,
		"last_modified": record.LastModified,
		"web_url":       record.WebURL,
		"download_url":  record.DownloadURL,
		"etag":          record.ETag,
		"depth":         record.Depth,
		"synced_at":     now,
		"updated_at":    now,
	}
	if record.ProjectCode != "" {
		fields["project_code"] = record.ProjectCode
	}
	return fields
}
