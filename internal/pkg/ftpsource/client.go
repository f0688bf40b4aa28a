package ftpsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/StudioFlowHQ/StudioFlow/internal/pkg/env"
)

// Config holds the connection settings for the studio's FTP drop folder,
// typically the camera-tethering or lab delivery box.
type Config struct {
	Address  string // host:port
	Username string
	Password string
	BaseDir  string
	Timeout  time.Duration
}

// LoadConfig reads the FTP source configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Address:  env.GetEnv("FTP_SOURCE_ADDRESS", ""),
		Username: env.GetEnv("FTP_SOURCE_USERNAME", "anonymous"),
		Password: env.GetEnv("FTP_SOURCE_PASSWORD", "anonymous"),
		BaseDir:  env.GetEnv("FTP_SOURCE_BASE_DIR", "/"),
		Timeout:  30 * time.Second,
	}
	if cfg.Address == "" {
		return nil, errors.New("FTP_SOURCE_ADDRESS is not configured")
	}
	return cfg, nil
}

// RemoteFile describes one candidate photo in the drop folder.
type RemoteFile struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Client lists and fetches photos from the FTP drop folder. One Client maps
// to one logged-in connection; it is not safe for concurrent use.
type Client struct {
	conn *ftp.ServerConn
	cfg  *Config
}

// Connect dials and logs into the FTP server.
func Connect(ctx context.Context, cfg *Config) (*Client, error) {
	conn, err := ftp.Dial(cfg.Address,
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("ftp dial %s: %w", cfg.Address, err)
	}

	if err := conn.Login(cfg.Username, cfg.Password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("ftp login: %w", err)
	}

	return &Client{conn: conn, cfg: cfg}, nil
}

// Close logs out and closes the connection.
func (c *Client) Close() error {
	return c.conn.Quit()
}

// ListPhotos returns the image files under dir (relative to the base dir),
// skipping subdirectories and non-image files.
func (c *Client) ListPhotos(dir string) ([]RemoteFile, error) {
	remote := path.Join(c.cfg.BaseDir, dir)
	entries, err := c.conn.List(remote)
	if err != nil {
		return nil, fmt.Errorf("ftp list %s: %w", remote, err)
	}

	var files []RemoteFile
	for _, entry := range entries {
		if entry.Type != ftp.EntryTypeFile {
			continue
		}
		if !IsPhotoFilename(entry.Name) {
			continue
		}
		files = append(files, RemoteFile{
			Path:    path.Join(remote, entry.Name),
			Name:    entry.Name,
			Size:    int64(entry.Size),
			ModTime: entry.Time,
		})
	}
	return files, nil
}

// Fetch opens a download stream for a remote file. The caller must close it.
func (c *Client) Fetch(remotePath string) (io.ReadCloser, error) {
	resp, err := c.conn.Retr(remotePath)
	if err != nil {
		return nil, fmt.Errorf("ftp retr %s: %w", remotePath, err)
	}
	return resp, nil
}

var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
}

// IsPhotoFilename reports whether the filename looks like an importable photo.
func IsPhotoFilename(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return photoExtensions[strings.ToLower(path.Ext(name))]
}
