package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeFTPImport   JobType = "ftp_import"
	JobTypePhotoDelete JobType = "photo_delete"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// FTPImportJobPayload contains the payload for FTP import jobs
type FTPImportJobPayload struct {
	AlbumID   uint    `json:"album_id"`
	UserID    uint    `json:"user_id"`
	RemoteDir string  `json:"remote_dir"`
	UnitPrice float64 `json:"unit_price"`
}

// ToMap converts the payload to a map for storage
func (p FTPImportJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"album_id":   p.AlbumID,
		"user_id":    p.UserID,
		"remote_dir": p.RemoteDir,
		"unit_price": p.UnitPrice,
	}
}

// FTPImportJobPayloadFromMap creates a payload from a map
func FTPImportJobPayloadFromMap(data map[string]interface{}) (*FTPImportJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload FTPImportJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// PhotoDeleteJobPayload contains the payload for deleting a photo's stored
// objects after the row has been soft-deleted
type PhotoDeleteJobPayload struct {
	PhotoID    uint     `json:"photo_id"`
	AlbumID    uint     `json:"album_id"`
	ObjectKeys []string `json:"object_keys"`
}

// ToMap converts the payload to a map for storage
func (p PhotoDeleteJobPayload) ToMap() map[string]interface{} {
	keys := make([]interface{}, 0, len(p.ObjectKeys))
	for _, k := range p.ObjectKeys {
		keys = append(keys, k)
	}
	return map[string]interface{}{
		"photo_id":    p.PhotoID,
		"album_id":    p.AlbumID,
		"object_keys": keys,
	}
}

// PhotoDeleteJobPayloadFromMap creates a payload from a map
func PhotoDeleteJobPayloadFromMap(data map[string]interface{}) (*PhotoDeleteJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload PhotoDeleteJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
