package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"creatorpack/internal/sources"
)

func TestStageLocalCopiesAndChecksums(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "talk.mp4")
	body := []byte("pretend media bytes")
	if err := os.WriteFile(source, body, 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	stagingDir := filepath.Join(dir, "staging")
	staged, err := NewStager(nil).Stage(context.Background(), sources.Metadata{LocalPath: source}, stagingDir)
	if err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}

	wantSum := sha256.Sum256(body)
	if staged.Checksum != hex.EncodeToString(wantSum[:]) {
		t.Fatalf("Checksum = %s, want %s", staged.Checksum, hex.EncodeToString(wantSum[:]))
	}
	if staged.Size != int64(len(body)) {
		t.Fatalf("Size = %d, want %d", staged.Size, len(body))
	}
	copied, err := os.ReadFile(staged.Path)
	if err != nil {
		t.Fatalf("read staged copy: %v", err)
	}
	if string(copied) != string(body) {
		t.Fatal("staged copy does not match source")
	}
}

func TestStageRemoteDownloads(t *testing.T) {
	body := []byte("remote media")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer server.Close()

	stagingDir := t.TempDir()
	meta := sources.Metadata{DownloadURL: server.URL + "/clips/example.webm"}
	staged, err := NewStager(server.Client()).Stage(context.Background(), meta, stagingDir)
	if err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}
	if filepath.Base(staged.Path) != "example.webm" {
		t.Fatalf("staged name = %s, want example.webm", filepath.Base(staged.Path))
	}
	wantSum := sha256.Sum256(body)
	if staged.Checksum != hex.EncodeToString(wantSum[:]) {
		t.Fatalf("Checksum mismatch: %s", staged.Checksum)
	}
}

func TestStageRemoteFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	meta := sources.Metadata{DownloadURL: server.URL + "/missing"}
	if _, err := NewStager(server.Client()).Stage(context.Background(), meta, t.TempDir()); err == nil {
		t.Fatal("expected error for 404 download")
	}
}

func TestStageRequiresSource(t *testing.T) {
	if _, err := NewStager(nil).Stage(context.Background(), sources.Metadata{}, t.TempDir()); err == nil {
		t.Fatal("expected error for metadata without local path or URL")
	}
}

func TestChecksumFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	sum, err := ChecksumFile(path)
	if err != nil {
		t.Fatalf("ChecksumFile: %v", err)
	}
	want := sha256.Sum256([]byte("abc"))
	if sum != hex.EncodeToString(want[:]) {
		t.Fatalf("sum = %s", sum)
	}
}
