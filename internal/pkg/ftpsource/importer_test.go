package ftpsource

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/StudioFlowHQ/StudioFlow/app/models"
	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/storage"
)

type fakeSource struct {
	files    []RemoteFile
	listErr  error
	fetchErr map[string]error
	fetched  []string
}

func (s *fakeSource) ListPhotos(_ string) ([]RemoteFile, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.files, nil
}

func (s *fakeSource) Fetch(remotePath string) (io.ReadCloser, error) {
	if err, ok := s.fetchErr[remotePath]; ok {
		return nil, err
	}
	s.fetched = append(s.fetched, remotePath)
	return io.NopCloser(bytes.NewReader([]byte("jpegbytes"))), nil
}

type fakeSink struct {
	uploads []string
	err     error
}

func (s *fakeSink) Upload(_ context.Context, objectKey string, _ io.Reader, size int64) (*storage.UploadResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.uploads = append(s.uploads, objectKey)
	return &storage.UploadResult{ObjectKey: objectKey, Size: size}, nil
}

type fakePhotoRepo struct {
	existing map[string]bool
	created  []*models.Photo
}

func (r *fakePhotoRepo) PhotoExists(_ uint, fileName string) (bool, error) {
	return r.existing[fileName], nil
}

func (r *fakePhotoRepo) CreatePhoto(photo *models.Photo) error {
	r.created = append(r.created, photo)
	return nil
}

func remoteFile(name string) RemoteFile {
	return RemoteFile{
		Path:    "/incoming/" + name,
		Name:    name,
		Size:    1024,
		ModTime: time.Now(),
	}
}

func TestImportAlbum_ImportsNewSkipsExisting(t *testing.T) {
	source := &fakeSource{files: []RemoteFile{
		remoteFile("IMG_0001.jpg"),
		remoteFile("IMG_0002.jpg"),
		remoteFile("IMG_0003.jpg"),
	}}
	sink := &fakeSink{}
	repo := &fakePhotoRepo{existing: map[string]bool{"IMG_0002.jpg": true}}
	imp := NewImporter(source, sink, repo, &storage.Config{}, 25.0)

	result, err := imp.ImportAlbum(context.Background(), 9, "sessao-ana")
	if err != nil {
		t.Fatalf("ImportAlbum: %v", err)
	}
	if result.Imported != 2 || result.Skipped != 1 || len(result.Failed) != 0 {
		t.Fatalf("result = %+v", result)
	}
	if len(repo.created) != 2 {
		t.Fatalf("created %d photos, want 2", len(repo.created))
	}

	photo := repo.created[0]
	if photo.AlbumID != 9 || photo.FileName != "IMG_0001.jpg" || photo.UnitPrice != 25.0 {
		t.Fatalf("photo = %+v", photo)
	}
	if photo.OriginalPath == "" ||
		photo.OriginalPath != photo.ThumbnailPath ||
		photo.OriginalPath != photo.WatermarkPath {
		t.Fatalf("variant paths = %q %q %q", photo.OriginalPath, photo.ThumbnailPath, photo.WatermarkPath)
	}
	if len(sink.uploads) != 2 {
		t.Fatalf("uploads = %v", sink.uploads)
	}
}

func TestImportAlbum_SingleFileFailureDoesNotAbort(t *testing.T) {
	source := &fakeSource{
		files: []RemoteFile{
			remoteFile("IMG_0001.jpg"),
			remoteFile("IMG_0002.jpg"),
		},
		fetchErr: map[string]error{"/incoming/IMG_0001.jpg": errors.New("transfer aborted")},
	}
	sink := &fakeSink{}
	repo := &fakePhotoRepo{existing: map[string]bool{}}
	imp := NewImporter(source, sink, repo, &storage.Config{}, 0)

	result, err := imp.ImportAlbum(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("ImportAlbum: %v", err)
	}
	if result.Imported != 1 || len(result.Failed) != 1 || result.Failed[0] != "IMG_0001.jpg" {
		t.Fatalf("result = %+v", result)
	}
}

func TestImportAlbum_ListFailure(t *testing.T) {
	source := &fakeSource{listErr: errors.New("530 not logged in")}
	imp := NewImporter(source, &fakeSink{}, &fakePhotoRepo{}, &storage.Config{}, 0)

	if _, err := imp.ImportAlbum(context.Background(), 1, ""); err == nil {
		t.Fatal("expected list error")
	}
}

func TestImportAlbum_ContextCancelled(t *testing.T) {
	source := &fakeSource{files: []RemoteFile{remoteFile("IMG_0001.jpg")}}
	imp := NewImporter(source, &fakeSink{}, &fakePhotoRepo{existing: map[string]bool{}}, &storage.Config{}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := imp.ImportAlbum(ctx, 1, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestIsPhotoFilename(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"IMG_0001.jpg", true},
		{"IMG_0001.JPEG", true},
		{"capa.png", true},
		{"scan.tiff", true},
		{".DS_Store", false},
		{"notes.txt", false},
		{"video.mp4", false},
	}
	for _, tt := range tests {
		if got := IsPhotoFilename(tt.name); got != tt.want {
			t.Errorf("IsPhotoFilename(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
