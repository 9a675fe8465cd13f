package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/esime/ielec/config"
)

func TestKey(t *testing.T) {
	at := time.Date(2025, 3, 4, 23, 0, 0, 0, time.FixedZone("CST", -6*3600))
	got := Key("u1", "conductor", at, "abc", ".pdf")
	want := "u1/conductor/2025/03/05/abc.pdf"
	if got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestFilesystem_PutGetList(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystem(filepath.Join(t.TempDir(), "archive"))
	if err != nil {
		t.Fatalf("NewFilesystem() error: %v", err)
	}

	loc, err := fs.Put(ctx, "u1/conductor/2025/03/04/a.pdf", "application/pdf", []byte("%PDF-a"))
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if _, err := os.Stat(loc); err != nil {
		t.Errorf("Put() location %q not on disk: %v", loc, err)
	}
	if _, err := fs.Put(ctx, "u2/cavity/2025/03/04/b.pdf", "application/pdf", []byte("%PDF-bb")); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	data, err := fs.Get(ctx, "u1/conductor/2025/03/04/a.pdf")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(data) != "%PDF-a" {
		t.Errorf("Get() = %q", data)
	}

	all, err := fs.List(ctx, "")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("List() returned %d objects, want 2", len(all))
	}
	if all[0].Key != "u1/conductor/2025/03/04/a.pdf" || all[0].Size != 6 {
		t.Errorf("List()[0] = %+v", all[0])
	}

	mine, err := fs.List(ctx, "u2/")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(mine) != 1 || mine[0].Key != "u2/cavity/2025/03/04/b.pdf" {
		t.Errorf("List(u2/) = %+v", mine)
	}
}

func TestFilesystem_Overwrite(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, body := range []string{"first", "second"} {
		if _, err := fs.Put(ctx, "k.pdf", "application/pdf", []byte(body)); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
	}
	data, err := fs.Get(ctx, "k.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("Get() = %q, want second", data)
	}
}

func TestFilesystem_Errors(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := fs.Get(ctx, "missing.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
	for _, key := range []string{"", "../escape.pdf", "a/../../escape.pdf"} {
		if _, err := fs.Put(ctx, key, "application/pdf", nil); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	store, err := New(ctx, config.ArchiveConfig{Type: "none"}, "", logger)
	if err != nil || store != nil {
		t.Errorf("New(none) = %v, %v; want nil, nil", store, err)
	}

	dir := t.TempDir()
	store, err = New(ctx, config.ArchiveConfig{Type: "filesystem", Dir: "pdfs"}, dir, logger)
	if err != nil {
		t.Fatalf("New(filesystem) error: %v", err)
	}
	fs, ok := store.(*Filesystem)
	if !ok {
		t.Fatalf("New(filesystem) returned %T", store)
	}
	if fs.Root() != filepath.Join(dir, "pdfs") {
		t.Errorf("Root() = %q", fs.Root())
	}

	if _, err := New(ctx, config.ArchiveConfig{Type: "ftp"}, "", logger); err == nil {
		t.Error("New(ftp) should fail")
	}
	if _, err := New(ctx, config.ArchiveConfig{Type: "s3"}, "", logger); err == nil {
		t.Error("New(s3) without bucket should fail")
	}
}

func TestNewS3_Prefix(t *testing.T) {
	s, err := NewS3(context.Background(), config.ArchiveConfig{
		Bucket:   "reports",
		Prefix:   "/ielec/",
		Region:   "us-east-1",
		Endpoint: "http://localhost:9000",
		KeyID:    "minio",
		Secret:   config.NewSecretString("minio123"),
	}, nil)
	if err != nil {
		t.Fatalf("NewS3() error: %v", err)
	}
	if got := s.objectKey("u1/a.pdf"); got != "ielec/u1/a.pdf" {
		t.Errorf("objectKey() = %q", got)
	}
	if _, err := s.Put(context.Background(), "../x.pdf", "application/pdf", nil); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Put(../x.pdf) error = %v, want ErrInvalidKey", err)
	}
}
