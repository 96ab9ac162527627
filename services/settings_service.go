package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"projectdrive/database"
	"projectdrive/models"
	"projectdrive/remotedrive"
	"projectdrive/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// rootFolderSettingKey is the well-known sync_settings key holding the
// RootFolderConfiguration singleton.
const rootFolderSettingKey = "root_folder"

// DefaultRootFolderPath is the legacy root used when no configuration has
// ever been saved.
const DefaultRootFolderPath = "/Projects"

// RootConfigStore exposes the root folder configuration to the services
// that resolve project paths.
type RootConfigStore interface {
	GetRootFolder() (*models.RootFolderConfiguration, error)
	RootFolderPath() string
}

// SettingsService persists engine settings in the sync_settings
// collection, one document per well-known key.
type SettingsService struct {
	settingsCollection *mongo.Collection
	drive              remotedrive.Client
}

// NewSettingsService creates a new settings service instance
func NewSettingsService(drive remotedrive.Client) *SettingsService {
	collections := database.NewCollections()
	return &SettingsService{
		settingsCollection: collections.SyncSettings(),
		drive:              drive,
	}
}

// GetRootFolder returns the configured root folder, or NotFound when none
// has been saved yet.
func (ss *SettingsService) GetRootFolder() (*models.RootFolderConfiguration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var setting models.SyncSetting
	err := ss.settingsCollection.FindOne(ctx, bson.M{"key": rootFolderSettingKey}).Decode(&setting)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NewDomainError(models.KindNotFound, "root folder is not configured")
		}
		return nil, fmt.Errorf("failed to get root folder setting: %v", err)
	}

	config, err := decodeRootFolder(setting.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode root folder setting: %v", err)
	}
	if config.UpdatedAt.IsZero() {
		config.UpdatedAt = setting.UpdatedAt
	}

	return config, nil
}

// RootFolderPath returns the configured root folder path, falling back to
// the legacy default when nothing is configured.
func (ss *SettingsService) RootFolderPath() string {
	config, err := ss.GetRootFolder()
	if err != nil || config.FolderPath == "" {
		return DefaultRootFolderPath
	}
	return config.FolderPath
}

// UpdateRootFolder validates and saves a new root folder path. The remote
// folder id and name are resolved best effort; an unreachable drive or a
// not-yet-created folder leaves them empty until the next provisioning run.
func (ss *SettingsService) UpdateRootFolder(path string) (*models.RootFolderConfiguration, error) {
	path = strings.TrimSpace(path)
	if err := utils.ValidateItemPath(path); err != nil {
		return nil, err
	}
	path = utils.JoinDrivePath(path)

	now := time.Now()
	config := &models.RootFolderConfiguration{
		FolderPath: path,
		UpdatedAt:  now,
	}

	if ss.drive != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		item, err := ss.drive.GetItemByPath(ctx, path)
		cancel()
		switch {
		case err == nil:
			config.FolderID = item.ID
			config.FolderName = item.Name
		case models.IsKind(err, models.KindNotFound):
			// Folder does not exist yet; it is created on first provision.
		default:
			logrus.WithError(err).WithField("path", path).Warn("could not resolve root folder on the drive")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"value":      config,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"key":        rootFolderSettingKey,
			"created_at": now,
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := ss.settingsCollection.UpdateOne(ctx, bson.M{"key": rootFolderSettingKey}, update, opts); err != nil {
		return nil, fmt.Errorf("failed to save root folder setting: %v", err)
	}

	return config, nil
}

// decodeRootFolder converts the loosely typed setting value back into a
// RootFolderConfiguration via a BSON round trip.
func decodeRootFolder(value interface{}) (*models.RootFolderConfiguration, error) {
	data, err := bson.Marshal(value)
	if err != nil {
		return nil, err
	}

	var config models.RootFolderConfiguration
	if err := bson.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
