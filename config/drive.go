package config

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"projectdrive/remotedrive"
)

// DriveManager wires the remote drive client from configuration
type DriveManager struct {
	config      *Config
	credentials *remotedrive.ClientCredentialsProvider
	client      remotedrive.Client
}

// NewDriveManager creates a new drive manager
func NewDriveManager(cfg *Config) *DriveManager {
	return &DriveManager{
		config: cfg,
	}
}

// Initialize builds the credential provider and the drive client
func (dm *DriveManager) Initialize() error {
	log.Println("Initializing drive client...")

	if dm.config.DriveBaseURL == "" {
		return fmt.Errorf("DRIVE_BASE_URL is required")
	}

	dm.credentials = remotedrive.NewClientCredentialsProvider(remotedrive.ClientCredentialsOptions{
		TokenURL:     dm.config.DriveTokenURL,
		ClientID:     dm.config.DriveClientID,
		ClientSecret: dm.config.DriveClientSecret,
		Scope:        dm.config.DriveScope,
	})

	dm.client = remotedrive.NewDriveClient(remotedrive.DriveClientOptions{
		BaseURL:     dm.config.DriveBaseURL,
		Credentials: dm.credentials,
		HTTPClient:  &http.Client{Timeout: dm.config.DriveTimeout},
		UserAgent:   fmt.Sprintf("%s/%s", dm.config.AppName, dm.config.AppVersion),
		MaxRetries:  dm.config.DriveMaxRetries,
	})

	log.Printf("Drive client initialized for %s", dm.config.DriveBaseURL)
	return nil
}

// Client returns the configured drive client
func (dm *DriveManager) Client() remotedrive.Client {
	return dm.client
}

// Configured reports whether drive credentials are fully set
func (dm *DriveManager) Configured() bool {
	return dm.config.DriveTokenURL != "" &&
		dm.config.DriveClientID != "" &&
		dm.config.DriveClientSecret != ""
}

// CredentialState describes the credential health for monitoring
func (dm *DriveManager) CredentialState() string {
	if !dm.Configured() || dm.credentials == nil {
		return "unconfigured"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := dm.credentials.CurrentToken(ctx); err != nil {
		log.Printf("Drive credential check failed: %v", err)
		return "error"
	}
	return "ok"
}

// HealthCheck verifies the drive API is reachable with the current credentials
func (dm *DriveManager) HealthCheck() error {
	if dm.client == nil {
		return fmt.Errorf("drive client not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return dm.client.Ping(ctx)
}
