package models

import "time"

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Meta      *Meta       `json:"meta,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type Meta struct {
	Page       int `json:"page,omitempty"`
	Limit      int `json:"limit,omitempty"`
	Total      int `json:"total,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
}

type ProvisionFolderRequest struct {
	Template    string `json:"template" validate:"required,template_id"`
	Description string `json:"description" validate:"max=255"`
}

type ScanRequest struct {
	IncludeSubfolders *bool `json:"include_subfolders,omitempty"`
	MaxDepth          int   `json:"max_depth" validate:"min=0"`
}

type ScanFolderRequest struct {
	FolderPath        string `json:"folder_path" validate:"required,drive_path"`
	IncludeSubfolders *bool  `json:"include_subfolders,omitempty"`
	MaxDepth          int    `json:"max_depth" validate:"min=0"`
}

type MoveFileRequest struct {
	TargetFolderID string `json:"target_folder_id"`
	TargetPath     string `json:"target_path"`
	NewName        string `json:"new_name"`
}

type MoveOperation struct {
	FileID         string `json:"file_id" validate:"required"`
	TargetFolderID string `json:"target_folder_id"`
	TargetPath     string `json:"target_path"`
	NewName        string `json:"new_name"`
}

type BulkMoveRequest struct {
	Operations []MoveOperation `json:"operations" validate:"required,min=1,max=100,dive"`
}

type RootFolderUpdateRequest struct {
	FolderPath string `json:"folder_path" validate:"required,drive_path"`
}
