package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/database"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/ftpsource"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/storage"
)

// processFTPImportJob pulls new photos from the studio's FTP drop folder into
// the target album.
func (q *Queue) processFTPImportJob(ctx context.Context, job *Job) error {
	payload, err := FTPImportJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid ftp import payload: %w", err)
	}

	ftpCfg, err := ftpsource.LoadConfig()
	if err != nil {
		return err
	}

	storageCfg, err := storage.LoadConfig()
	if err != nil {
		return err
	}
	sink, err := storage.NewClient(storageCfg)
	if err != nil {
		return err
	}

	source, err := ftpsource.Connect(ctx, ftpCfg)
	if err != nil {
		return err
	}
	defer source.Close()

	importer := ftpsource.NewImporter(source, sink, newImportRepo(), storageCfg, payload.UnitPrice)
	result, err := importer.ImportAlbum(ctx, payload.AlbumID, payload.RemoteDir)
	if err != nil {
		return err
	}

	if len(result.Failed) > 0 {
		// Partial failure retries the job; already-imported files are skipped
		// on the next run.
		return fmt.Errorf("import incomplete: %d files failed (%v)", len(result.Failed), result.Failed)
	}

	log.Infof("[JobQueue] FTP import for album %d done: imported=%d skipped=%d",
		payload.AlbumID, result.Imported, result.Skipped)
	return nil
}

type importRepo struct{}

func newImportRepo() ftpsource.PhotoRepo {
	return importRepo{}
}

func (importRepo) PhotoExists(albumID uint, fileName string) (bool, error) {
	var count int64
	err := database.GetDB().Model(&models.Photo{}).
		Where("album_id = ? AND file_name = ?", albumID, fileName).
		Count(&count).Error
	return count > 0, err
}

func (importRepo) CreatePhoto(photo *models.Photo) error {
	return database.GetDB().Create(photo).Error
}
