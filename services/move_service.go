package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"projectdrive/models"
	"projectdrive/remotedrive"
	"projectdrive/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// maxBulkMoveOperations caps a batch to bound worst-case latency and
	// the blast radius of partial failure.
	maxBulkMoveOperations = 100

	// bulkMovePause spaces successive remote calls inside a batch so the
	// provider rate limit is never tripped by our own bulk traffic.
	bulkMovePause = 100 * time.Millisecond

	// maxNameCollisionAttempts bounds suffix probing in a destination
	// folder before giving up with NameConflict.
	maxNameCollisionAttempts = 100
)

// MoveService moves and renames drive items and keeps the local file
// index in step with what the drive confirmed.
type MoveService struct {
	drive remotedrive.Client
	index FileIndexStore
}

// NewMoveService creates a new move service instance
func NewMoveService(drive remotedrive.Client, index FileIndexStore) *MoveService {
	return &MoveService{
		drive: drive,
		index: index,
	}
}

// MoveOrRename applies a rename, a move, or both to one item. Without a
// target it renames in place and requires newName. With a target (item id
// or absolute path) it moves, creating missing path folders on the way,
// resolving destination name collisions with numeric suffixes when a new
// name was asked for, and issuing one combined patch.
func (ms *MoveService) MoveOrRename(fileID, target, newName string) (*models.MoveResult, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "file id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Fetch before mutating so a missing source reports as NotFound
	// instead of a generic patch failure.
	source, err := ms.drive.GetItem(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(target) == "" {
		return ms.renameInPlace(ctx, source, newName)
	}
	return ms.move(ctx, source, strings.TrimSpace(target), newName)
}

// BulkMoveOrRename runs up to 100 move operations sequentially with a
// fixed pause between remote calls. Failures are isolated per item; the
// batch itself always completes.
func (ms *MoveService) BulkMoveOrRename(operations []models.MoveOperation) (*models.BulkMoveResult, error) {
	if len(operations) == 0 {
		return nil, models.NewDomainError(models.KindMissingParameter, "at least one move operation is required")
	}
	if len(operations) > maxBulkMoveOperations {
		return nil, models.NewDomainError(models.KindMissingParameter, fmt.Sprintf("a batch is capped at %d operations", maxBulkMoveOperations))
	}

	result := &models.BulkMoveResult{
		BatchID:   uuid.NewString(),
		Requested: len(operations),
		Succeeded: []models.MoveOutcome{},
		Failed:    []models.FailureRecord{},
	}

	logrus.WithFields(logrus.Fields{
		"batch_id":   result.BatchID,
		"operations": len(operations),
	}).Info("starting bulk move")

	for i, op := range operations {
		if i > 0 {
			time.Sleep(bulkMovePause)
		}

		target := op.TargetFolderID
		if target == "" {
			target = op.TargetPath
		}

		moved, err := ms.MoveOrRename(op.FileID, target, op.NewName)
		if err != nil {
			result.Failed = append(result.Failed, failureFromError(op.FileID, err))
			continue
		}
		result.Succeeded = append(result.Succeeded, models.MoveOutcome{
			FileID:    op.FileID,
			FinalName: moved.FinalName,
			Path:      moved.Record.Path,
		})
	}

	logrus.WithFields(logrus.Fields{
		"batch_id":  result.BatchID,
		"succeeded": len(result.Succeeded),
		"failed":    len(result.Failed),
	}).Info("bulk move finished")

	return result, nil
}

func (ms *MoveService) renameInPlace(ctx context.Context, source *remotedrive.Item, newName string) (*models.MoveResult, error) {
	if strings.TrimSpace(newName) == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "a move needs a target folder, a rename needs a new name")
	}
	if err := utils.ValidateItemName(newName); err != nil {
		return nil, err
	}

	updated, err := ms.drive.UpdateItem(ctx, source.ID, remotedrive.ItemPatch{Name: newName})
	if err != nil {
		return nil, err
	}

	newPath := ""
	if source.Path != "" {
		newPath = utils.JoinDrivePath(parentDir(source.Path), updated.Name)
	}

	record := ms.refreshIndex(updated, newPath)
	return &models.MoveResult{
		Record:    record,
		FinalName: updated.Name,
		Renamed:   updated.Name != source.Name,
	}, nil
}

func (ms *MoveService) move(ctx context.Context, source *remotedrive.Item, target, newName string) (*models.MoveResult, error) {
	targetFolder, err := resolveFolder(ctx, ms.drive, target)
	if err != nil {
		return nil, err
	}

	finalName := source.Name
	if strings.TrimSpace(newName) != "" {
		if err := utils.ValidateItemName(newName); err != nil {
			return nil, err
		}
		finalName, err = ms.resolveCollision(ctx, targetFolder.ID, newName)
		if err != nil {
			return nil, err
		}
	}

	// One combined patch: parent and, when it changes, name.
	patch := remotedrive.ItemPatch{ParentID: targetFolder.ID}
	if finalName != source.Name {
		patch.Name = finalName
	}

	updated, err := ms.drive.UpdateItem(ctx, source.ID, patch)
	if err != nil {
		return nil, err
	}

	destPath := targetFolder.Path
	if strings.HasPrefix(target, "/") {
		destPath = target
	}
	newPath := ""
	if destPath != "" {
		newPath = utils.JoinDrivePath(destPath, finalName)
	}

	record := ms.refreshIndex(updated, newPath)
	return &models.MoveResult{
		Record:    record,
		FinalName: finalName,
		Renamed:   finalName != source.Name,
		Moved:     true,
	}, nil
}

// resolveCollision probes the destination folder for the desired name and
// appends _1, _2, ... before the extension until a free one is found.
func (ms *MoveService) resolveCollision(ctx context.Context, folderID, desiredName string) (string, error) {
	children, err := ms.drive.ListChildren(ctx, folderID)
	if err != nil {
		return "", err
	}

	taken := make(map[string]bool, len(children))
	for _, child := range children {
		taken[strings.ToLower(child.Name)] = true
	}

	if !taken[strings.ToLower(desiredName)] {
		return desiredName, nil
	}

	for i := 1; i <= maxNameCollisionAttempts; i++ {
		candidate := utils.SuffixedName(desiredName, i)
		if !taken[strings.ToLower(candidate)] {
			return candidate, nil
		}
	}

	return "", models.NewDomainError(models.KindNameConflict,
		fmt.Sprintf("no free name for %s after %d attempts", desiredName, maxNameCollisionAttempts))
}

// refreshIndex mirrors a confirmed drive mutation into the local index.
// The index is derived data, so a failure here is logged, not surfaced.
// Depth is kept from the previous record; it goes stale on a cross-tree
// move until the next scan.
func (ms *MoveService) refreshIndex(updated *remotedrive.Item, newPath string) *models.RemoteFileRecord {
	projectCode := ""
	depth := 0
	if existing, err := ms.index.GetByItemID(updated.ID); err == nil {
		projectCode = existing.ProjectCode
		depth = existing.Depth
	}

	record := recordFromItem(updated, newPath, projectCode, depth)
	if err := ms.index.UpsertRecord(record); err != nil {
		logrus.WithField("item", updated.ID).WithError(err).Warn("file index not updated after move")
	}
	return record
}

func parentDir(itemPath string) string {
	segments := splitDrivePath(itemPath)
	if len(segments) <= 1 {
		return "/"
	}
	return "/" + strings.Join(segments[:len(segments)-1], "/")
}
