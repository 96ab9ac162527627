package models

import "time"

// FailureRecord is one failed item inside a partially successful batch.
type FailureRecord struct {
	Target  string    `json:"target"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

type ProvisionedFolder struct {
	FolderID   string `json:"folder_id"`
	FolderName string `json:"folder_name"`
	FolderPath string `json:"folder_path"`
	WebURL     string `json:"web_url"`
}

type ProvisionResult struct {
	ProjectCode string            `json:"project_code"`
	Template    string            `json:"template"`
	Folder      ProvisionedFolder `json:"folder"`
	Subfolders  []string          `json:"subfolders"`
	Failed      []FailureRecord   `json:"failed,omitempty"`
}

// Partial reports whether some subfolders failed while the root succeeded.
func (r *ProvisionResult) Partial() bool {
	return len(r.Failed) > 0
}

type MoveResult struct {
	Record    *RemoteFileRecord `json:"record"`
	FinalName string            `json:"final_name"`
	Renamed   bool              `json:"renamed"`
	Moved     bool              `json:"moved"`
}

type MoveOutcome struct {
	FileID    string `json:"file_id"`
	FinalName string `json:"final_name"`
	Path      string `json:"path"`
}

type BulkMoveResult struct {
	BatchID   string          `json:"batch_id"`
	Requested int             `json:"requested"`
	Succeeded []MoveOutcome   `json:"succeeded"`
	Failed    []FailureRecord `json:"failed"`
}

const (
	ReconcileMappedExisting = "mapped_existing"
	ReconcileCreatedNew     = "created_new"
	ReconcileError          = "error"
)

type ReconcileOutcome struct {
	ProjectCode string `json:"project_code"`
	Status      string `json:"status"` // mapped_existing, created_new, error
	FolderID    string `json:"folder_id,omitempty"`
	FolderPath  string `json:"folder_path,omitempty"`
	Message     string `json:"message,omitempty"`
}

type ReconcileReport struct {
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Total      int                `json:"total"`
	Mapped     int                `json:"mapped"`
	Created    int                `json:"created"`
	Errors     int                `json:"errors"`
	Outcomes   []ReconcileOutcome `json:"outcomes"`
}

type ScanResult struct {
	RootPath  string              `json:"root_path"`
	Records   []*RemoteFileRecord `json:"records"`
	Folders   int                 `json:"folders"`
	Files     int                 `json:"files"`
	MaxDepth  int                 `json:"max_depth"`
	ScannedAt time.Time           `json:"scanned_at"`
}
