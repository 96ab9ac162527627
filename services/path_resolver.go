package services

import (
	"context"
	"fmt"
	"strings"

	"projectdrive/models"
	"projectdrive/remotedrive"
	"projectdrive/utils"
)

// ensureFolderPath resolves an absolute drive path to its folder item,
// creating missing segments on the way down. A NameConflict while creating
// a segment means another writer got there first, so the existing folder
// is looked up and reused.
func ensureFolderPath(ctx context.Context, drive remotedrive.Client, folderPath string) (*remotedrive.Item, error) {
	item, err := drive.GetItemByPath(ctx, folderPath)
	if err == nil {
		if !item.IsFolder {
			return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("%s is not a folder", folderPath))
		}
		return item, nil
	}
	if !models.IsKind(err, models.KindNotFound) {
		return nil, err
	}

	parentID := remotedrive.RootItemID
	var current *remotedrive.Item
	currentPath := ""

	for _, segment := range splitDrivePath(folderPath) {
		currentPath = currentPath + "/" + segment

		next, err := drive.GetItemByPath(ctx, currentPath)
		if err == nil {
			if !next.IsFolder {
				return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("%s is not a folder", currentPath))
			}
			current, parentID = next, next.ID
			continue
		}
		if !models.IsKind(err, models.KindNotFound) {
			return nil, err
		}

		created, err := drive.CreateFolder(ctx, parentID, segment)
		if err != nil {
			if models.IsKind(err, models.KindNameConflict) {
				existing, lookupErr := drive.GetItemByPath(ctx, currentPath)
				if lookupErr == nil {
					current, parentID = existing, existing.ID
					continue
				}
			}
			return nil, err
		}
		current, parentID = created, created.ID
	}

	if current == nil {
		return drive.GetItem(ctx, remotedrive.RootItemID)
	}
	return current, nil
}

// resolveFolder resolves a folder reference that is either an item id or
// an absolute drive path. Missing path segments are created; ids must
// exist already.
func resolveFolder(ctx context.Context, drive remotedrive.Client, ref string) (*remotedrive.Item, error) {
	if strings.HasPrefix(ref, "/") {
		if err := utils.ValidateItemPath(ref); err != nil {
			return nil, err
		}
		return ensureFolderPath(ctx, drive, ref)
	}

	item, err := drive.GetItem(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !item.IsFolder {
		return nil, models.NewDomainError(models.KindNotFound, fmt.Sprintf("move target %s is not a folder", ref))
	}
	return item, nil
}

// recordFromItem builds an index record from a drive item. The full path
// is passed in when the caller walked it; the provider path is the
// fallback.
func recordFromItem(item *remotedrive.Item, fullPath, projectCode string, depth int) *models.RemoteFileRecord {
	if fullPath == "" {
		fullPath = item.Path
	}
	return &models.RemoteFileRecord{
		DriveItemID:  item.ID,
		Name:         item.Name,
		Path:         fullPath,
		ParentID:     item.ParentID,
		Size:         item.Size,
		MimeType:     item.MimeType,
		IsFolder:     item.IsFolder,
		LastModified: item.LastModified,
		WebURL:       item.WebURL,
		DownloadURL:  item.DownloadURL,
		ETag:         item.ETag,
		ProjectCode:  projectCode,
		Depth:        depth,
	}
}

// failureFromError flattens an error into a batch failure record.
func failureFromError(target string, err error) models.FailureRecord {
	record := models.FailureRecord{
		Target:  target,
		Kind:    models.KindUnknown,
		Message: err.Error(),
	}
	if de, ok := models.AsDomainError(err); ok {
		record.Kind = de.Kind
		record.Message = de.Message
	}
	return record
}

func splitDrivePath(path string) []string {
	segments := []string{}
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}
