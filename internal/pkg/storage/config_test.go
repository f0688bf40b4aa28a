package storage

import "testing"

func TestObjectKey(t *testing.T) {
	cfg := &Config{}

	tests := []struct {
		albumID  uint
		uuid     string
		variant  string
		filename string
		want     string
	}{
		{12, "a1b2c3", VariantOriginal, "IMG_0042.JPG", "albums/12/original/a1b2c3.jpg"},
		{12, "a1b2c3", VariantThumbnail, "IMG_0042.jpg", "albums/12/thumb/a1b2c3.jpg"},
		{7, "deadbeef", VariantWatermark, "photo.png", "albums/7/watermark/deadbeef.png"},
		{3, "x", VariantOriginal, "noext", "albums/3/original/x"},
	}

	for _, tt := range tests {
		if got := cfg.ObjectKey(tt.albumID, tt.uuid, tt.variant, tt.filename); got != tt.want {
			t.Errorf("ObjectKey(%d, %q, %q, %q) = %q, want %q",
				tt.albumID, tt.uuid, tt.variant, tt.filename, got, tt.want)
		}
	}
}

func TestGetContentType(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".jpg", "image/jpeg"},
		{".JPEG", "image/jpeg"},
		{".png", "image/png"},
		{".webp", "image/webp"},
		{".raw", "application/octet-stream"},
		{"", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := getContentType(tt.ext); got != tt.want {
			t.Errorf("getContentType(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestLoadConfig_ValidationWhenEnabled(t *testing.T) {
	t.Setenv("S3_STORAGE_ENABLED", "true")
	t.Setenv("S3_ACCESS_KEY_ID", "")
	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")
	t.Setenv("S3_BUCKET_NAME", "photos")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing access key")
	}

	t.Setenv("S3_ACCESS_KEY_ID", "key")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.IsEnabled() || cfg.BucketName != "photos" {
		t.Fatalf("cfg = %+v", cfg)
	}
}
