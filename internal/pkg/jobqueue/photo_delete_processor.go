package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/storage"
)

// processPhotoDeleteJob removes a deleted photo's objects from S3.
func (q *Queue) processPhotoDeleteJob(ctx context.Context, job *Job) error {
	payload, err := PhotoDeleteJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid photo delete payload: %w", err)
	}
	if len(payload.ObjectKeys) == 0 {
		return nil
	}

	storageCfg, err := storage.LoadConfig()
	if err != nil {
		return err
	}
	client, err := storage.NewClient(storageCfg)
	if err != nil {
		return err
	}

	// The variant paths may all point at the same object; dedupe before delete.
	seen := make(map[string]bool, len(payload.ObjectKeys))
	unique := payload.ObjectKeys[:0]
	for _, key := range payload.ObjectKeys {
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, key)
	}

	if err := client.DeleteAll(ctx, unique...); err != nil {
		return err
	}

	log.Infof("[JobQueue] Deleted %d stored objects for photo %d", len(unique), payload.PhotoID)
	return nil
}
