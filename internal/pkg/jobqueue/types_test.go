package jobqueue

import (
	"testing"
	"time"
)

func TestFTPImportJobPayloadRoundTrip(t *testing.T) {
	payload := FTPImportJobPayload{
		AlbumID:   12,
		UserID:    3,
		RemoteDir: "sessao-ana",
		UnitPrice: 25.5,
	}

	got, err := FTPImportJobPayloadFromMap(payload.ToMap())
	if err != nil {
		t.Fatalf("FTPImportJobPayloadFromMap: %v", err)
	}
	if *got != payload {
		t.Fatalf("got %+v, want %+v", got, payload)
	}
}

func TestPhotoDeleteJobPayloadRoundTrip(t *testing.T) {
	payload := PhotoDeleteJobPayload{
		PhotoID:    7,
		AlbumID:    12,
		ObjectKeys: []string{"albums/12/original/a.jpg", "albums/12/thumb/a.jpg"},
	}

	got, err := PhotoDeleteJobPayloadFromMap(payload.ToMap())
	if err != nil {
		t.Fatalf("PhotoDeleteJobPayloadFromMap: %v", err)
	}
	if got.PhotoID != 7 || got.AlbumID != 12 || len(got.ObjectKeys) != 2 {
		t.Fatalf("got %+v", got)
	}
}

func TestJobStateTransitions(t *testing.T) {
	job := &Job{
		ID:         "test",
		Type:       JobTypeFTPImport,
		Status:     JobStatusPending,
		MaxRetries: DefaultMaxRetries,
		CreatedAt:  time.Now(),
	}

	job.MarkAsProcessing()
	if job.Status != JobStatusProcessing || job.ProcessedAt == nil {
		t.Fatalf("after MarkAsProcessing: %+v", job)
	}

	job.MarkAsFailed("boom")
	if job.Status != JobStatusFailed || job.RetryCount != 1 || job.ErrorMsg != "boom" {
		t.Fatalf("after MarkAsFailed: %+v", job)
	}
	if !job.IsRetryable() {
		t.Fatal("job with 1/3 retries should be retryable")
	}

	job.MarkAsFailed("boom")
	job.MarkAsFailed("boom")
	if job.IsRetryable() {
		t.Fatal("job at max retries should not be retryable")
	}

	job.MarkAsCompleted()
	if job.Status != JobStatusCompleted || job.CompletedAt == nil || job.ErrorMsg != "" {
		t.Fatalf("after MarkAsCompleted: %+v", job)
	}
}
