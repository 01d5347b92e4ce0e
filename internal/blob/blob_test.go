package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/leftoverhq/leftover/internal/db"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := NewSQLiteStore(db.NewTestDB(t), "https://leftover.example/")
	ctx := context.Background()

	key := NewKey(".jpg")
	if !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("expected key with .jpg suffix, got %q", key)
	}

	if err := store.Put(ctx, key, bytes.NewReader([]byte("jpeg-bytes")), "image/jpeg"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rc, mime, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "jpeg-bytes" || mime != "image/jpeg" {
		t.Errorf("got %q (%s), want jpeg-bytes (image/jpeg)", data, mime)
	}

	u, err := store.URL(ctx, key)
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if u != "https://leftover.example/api/images/"+key {
		t.Errorf("unexpected URL %q", u)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := store.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteStoreRelativeURL(t *testing.T) {
	store := NewSQLiteStore(db.NewTestDB(t), "")
	u, _ := store.URL(context.Background(), "a b.jpg")
	if u != "/api/images/a%20b.jpg" {
		t.Errorf("unexpected URL %q", u)
	}
}

func TestS3StorePresignedURL(t *testing.T) {
	store, err := NewS3Store(context.Background(), S3Config{
		Bucket:          "photos",
		Region:          "eu-central-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		PathStyle:       true,
	})
	if err != nil {
		t.Fatalf("NewS3Store: %v", err)
	}
	if store.Driver() != DriverS3 {
		t.Errorf("expected s3 driver, got %s", store.Driver())
	}

	raw, err := store.URL(context.Background(), "bread.jpg")
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parsing presigned URL: %v", err)
	}
	if u.Host != "localhost:9000" || u.Path != "/photos/bread.jpg" {
		t.Errorf("unexpected presigned URL %q", raw)
	}
	if u.Query().Get("X-Amz-Signature") == "" {
		t.Errorf("expected signature in %q", raw)
	}
	if u.Query().Get("X-Amz-Expires") != "900" {
		t.Errorf("expected 15 minute expiry, got %q", u.Query().Get("X-Amz-Expires"))
	}
}

func TestS3ConfigFromEnv(t *testing.T) {
	t.Setenv("LEFTOVER_BLOB_S3_BUCKET", "")
	if _, err := S3ConfigFromEnv(); err == nil {
		t.Error("expected error without bucket")
	}

	t.Setenv("LEFTOVER_BLOB_S3_BUCKET", "photos")
	t.Setenv("LEFTOVER_BLOB_S3_PATH_STYLE", "TRUE")
	t.Setenv("LEFTOVER_BLOB_S3_URL_EXPIRY", "1h")
	cfg, err := S3ConfigFromEnv()
	if err != nil {
		t.Fatalf("S3ConfigFromEnv: %v", err)
	}
	if cfg.Bucket != "photos" || !cfg.PathStyle || cfg.URLExpiry.Hours() != 1 {
		t.Errorf("unexpected config %+v", cfg)
	}
}
