package ftpsource

import (
	"context"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/storage"
)

// Source is the FTP slice the importer needs.
type Source interface {
	ListPhotos(dir string) ([]RemoteFile, error)
	Fetch(remotePath string) (io.ReadCloser, error)
}

// Sink stores fetched photo bytes.
type Sink interface {
	Upload(ctx context.Context, objectKey string, body io.Reader, size int64) (*storage.UploadResult, error)
}

// PhotoRepo is the DB slice the importer needs.
type PhotoRepo interface {
	PhotoExists(albumID uint, fileName string) (bool, error)
	CreatePhoto(photo *models.Photo) error
}

// ImportResult summarizes one import run over a remote directory.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed,omitempty"`
}

// Importer copies new photos from the FTP drop folder into an album. Files
// already present in the album (by filename) are skipped, so a run is safe
// to repeat.
type Importer struct {
	source    Source
	sink      Sink
	repo      PhotoRepo
	keyFn     func(albumID uint, photoUUID, variant, filename string) string
	unitPrice float64
}

func NewImporter(source Source, sink Sink, repo PhotoRepo, cfg *storage.Config, unitPrice float64) *Importer {
	return &Importer{
		source:    source,
		sink:      sink,
		repo:      repo,
		keyFn:     cfg.ObjectKey,
		unitPrice: unitPrice,
	}
}

// ImportAlbum pulls every new photo under remoteDir into the album. A single
// failed file is recorded and does not abort the run.
func (i *Importer) ImportAlbum(ctx context.Context, albumID uint, remoteDir string) (*ImportResult, error) {
	files, err := i.source.ListPhotos(remoteDir)
	if err != nil {
		return nil, fmt.Errorf("list remote photos: %w", err)
	}

	result := &ImportResult{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		exists, err := i.repo.PhotoExists(albumID, file.Name)
		if err != nil {
			return result, fmt.Errorf("check existing photo %s: %w", file.Name, err)
		}
		if exists {
			result.Skipped++
			continue
		}

		if err := i.importOne(ctx, albumID, file); err != nil {
			log.Warnf("[FTPImport] importing %s into album %d failed: %v", file.Name, albumID, err)
			result.Failed = append(result.Failed, file.Name)
			continue
		}
		result.Imported++
	}

	log.Infof("[FTPImport] album %d: imported=%d skipped=%d failed=%d",
		albumID, result.Imported, result.Skipped, len(result.Failed))
	return result, nil
}

func (i *Importer) importOne(ctx context.Context, albumID uint, file RemoteFile) error {
	body, err := i.source.Fetch(file.Path)
	if err != nil {
		return err
	}
	defer body.Close()

	photoUUID := uuid.New().String()
	objectKey := i.keyFn(albumID, photoUUID, storage.VariantOriginal, file.Name)

	if _, err := i.sink.Upload(ctx, objectKey, body, file.Size); err != nil {
		return err
	}

	// No image processing on import; all variants point at the original.
	photo := &models.Photo{
		AlbumID:       albumID,
		FileName:      file.Name,
		FileSize:      file.Size,
		OriginalPath:  objectKey,
		ThumbnailPath: objectKey,
		WatermarkPath: objectKey,
		UnitPrice:     i.unitPrice,
	}
	return i.repo.CreatePhoto(photo)
}
