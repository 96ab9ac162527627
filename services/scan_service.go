package services

import (
	"context"
	"fmt"
	"time"

	"projectdrive/models"
	"projectdrive/remotedrive"
	"projectdrive/utils"

	"github.com/sirupsen/logrus"
)

// maxScanDepth bounds recursion regardless of what the caller asks for.
const maxScanDepth = 10

// ScanOptions controls how deep a scan descends. A MaxDepth of zero means
// the full permitted depth.
type ScanOptions struct {
	IncludeSubfolders bool
	MaxDepth          int
}

// ScanService walks remote folder trees and refreshes the local file
// index with what it finds.
type ScanService struct {
	drive    remotedrive.Client
	index    FileIndexStore
	mappings MappingStore
}

// NewScanService creates a new scan service instance
func NewScanService(drive remotedrive.Client, index FileIndexStore, mappings MappingStore) *ScanService {
	return &ScanService{
		drive:    drive,
		index:    index,
		mappings: mappings,
	}
}

// ScanProject scans the mapped folder of a project and stamps every
// record with the project code.
func (ss *ScanService) ScanProject(projectCode string, opts ScanOptions) (*models.ScanResult, error) {
	code := utils.SanitizeProjectCode(projectCode)
	if code == "" {
		return nil, models.NewDomainError(models.KindMissingParameter, "project code is required")
	}

	mapping, err := ss.mappings.GetMapping(code)
	if err != nil {
		return nil, err
	}

	return ss.scan(mapping.FolderPath, code, opts)
}

// ScanFolder scans an arbitrary drive folder without stamping records
// with a project code.
func (ss *ScanService) ScanFolder(rootPath string, opts ScanOptions) (*models.ScanResult, error) {
	return ss.scan(rootPath, "", opts)
}

func (ss *ScanService) scan(rootPath, projectCode string, opts ScanOptions) (*models.ScanResult, error) {
	if err := utils.ValidateItemPath(rootPath); err != nil {
		return nil, err
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 || maxDepth > maxScanDepth {
		maxDepth = maxScanDepth
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result := &models.ScanResult{
		RootPath:  rootPath,
		Records:   []*models.RemoteFileRecord{},
		MaxDepth:  maxDepth,
		ScannedAt: time.Now(),
	}

	root, err := ss.drive.GetItemByPath(ctx, rootPath)
	if err != nil {
		// Callers treat "nothing found" and "root inaccessible" the same
		// way at this boundary.
		logrus.WithField("path", rootPath).WithError(err).Warn("scan root inaccessible")
		return result, nil
	}

	result.Records = ss.walk(ctx, root, rootPath, projectCode, opts.IncludeSubfolders, maxDepth)
	for _, record := range result.Records {
		if record.IsFolder {
			result.Folders++
		} else {
			result.Files++
		}
	}

	if len(result.Records) > 0 {
		if _, err := ss.index.UpsertRecords(result.Records); err != nil {
			return nil, fmt.Errorf("failed to persist scan results: %v", err)
		}
	}

	return result, nil
}

type scanEntry struct {
	item  *remotedrive.Item
	path  string
	depth int
}

// walk lists the tree breadth first, one folder at a time. A failure below
// the root drops that branch and keeps going; one unreadable folder must
// never abort the whole scan.
func (ss *ScanService) walk(ctx context.Context, root *remotedrive.Item, rootPath, projectCode string, includeSubfolders bool, maxDepth int) []*models.RemoteFileRecord {
	records := []*models.RemoteFileRecord{}
	queue := []scanEntry{{item: root, path: rootPath, depth: 0}}

	for len(queue) > 0 {
		entry := queue[0]
		queue = queue[1:]

		children, err := ss.drive.ListChildren(ctx, entry.item.ID)
		if err != nil {
			logrus.WithField("path", entry.path).WithError(err).Warn("skipping unreadable folder during scan")
			continue
		}

		for _, child := range children {
			childDepth := entry.depth + 1
			childPath := utils.JoinDrivePath(entry.path, child.Name)
			records = append(records, recordFromItem(child, childPath, projectCode, childDepth))

			if child.IsFolder && includeSubfolders && childDepth < maxDepth {
				queue = append(queue, scanEntry{item: child, path: childPath, depth: childDepth})
			}
		}
	}

	return records
}
