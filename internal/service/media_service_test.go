package service

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/certifex/certifex-backend/internal/config"
)

func newTestMediaService(t *testing.T) *MediaService {
	t.Helper()
	cfg := &config.Config{
		MediaRoot:      t.TempDir(),
		MaxUploadBytes: 1024,
	}
	return NewMediaService(cfg, zerolog.Nop())
}

func TestAppendSessionChunkSequence(t *testing.T) {
	svc := newTestMediaService(t)

	next, err := svc.AppendSessionChunk(7, 0, 5, strings.NewReader("AAAAA"))
	if err != nil {
		t.Fatalf("chunk 0: %v", err)
	}
	if next != 1 {
		t.Fatalf("next = %d, want 1", next)
	}

	next, err = svc.AppendSessionChunk(7, 1, 5, strings.NewReader("BBBBB"))
	if err != nil {
		t.Fatalf("chunk 1: %v", err)
	}
	if next != 2 {
		t.Fatalf("next = %d, want 2", next)
	}

	path, err := svc.SessionRecordingPath(7)
	if err != nil {
		t.Fatalf("recording path: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read recording: %v", err)
	}
	if string(data) != "AAAAABBBBB" {
		t.Errorf("recording = %q, want appended chunks", data)
	}
}

func TestAppendSessionChunkOutOfOrder(t *testing.T) {
	svc := newTestMediaService(t)

	if _, err := svc.AppendSessionChunk(3, 0, 2, strings.NewReader("ab")); err != nil {
		t.Fatalf("chunk 0: %v", err)
	}

	expected, err := svc.AppendSessionChunk(3, 5, 2, strings.NewReader("cd"))
	if !errors.Is(err, ErrChunkOutOfOrder) {
		t.Fatalf("err = %v, want ErrChunkOutOfOrder", err)
	}
	if expected != 1 {
		t.Errorf("expected index = %d, want 1", expected)
	}
}

func TestAppendSessionChunkResetsOnZero(t *testing.T) {
	svc := newTestMediaService(t)

	if _, err := svc.AppendSessionChunk(9, 0, 3, strings.NewReader("old")); err != nil {
		t.Fatalf("first recording: %v", err)
	}
	if _, err := svc.AppendSessionChunk(9, 1, 4, strings.NewReader("tail")); err != nil {
		t.Fatalf("first recording tail: %v", err)
	}

	// Chunk 0 starts the recording over.
	if _, err := svc.AppendSessionChunk(9, 0, 3, strings.NewReader("new")); err != nil {
		t.Fatalf("reset: %v", err)
	}

	path, err := svc.SessionRecordingPath(9)
	if err != nil {
		t.Fatalf("recording path: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read recording: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("recording = %q, want %q", data, "new")
	}
}

func TestSessionRecordingPathMissing(t *testing.T) {
	svc := newTestMediaService(t)
	if _, err := svc.SessionRecordingPath(42); !errors.Is(err, ErrNoMedia) {
		t.Errorf("err = %v, want ErrNoMedia", err)
	}
}

func TestResolveStoredPathContainment(t *testing.T) {
	svc := newTestMediaService(t)

	if _, err := svc.ResolveStoredPath(filepath.Join("certificates", "1", "cert.pdf")); err != nil {
		t.Errorf("valid path rejected: %v", err)
	}
	if _, err := svc.ResolveStoredPath("../outside.txt"); !errors.Is(err, ErrPathEscape) {
		t.Errorf("err = %v, want ErrPathEscape", err)
	}
	if _, err := svc.ResolveStoredPath("certificates/../../escape"); !errors.Is(err, ErrPathEscape) {
		t.Errorf("err = %v, want ErrPathEscape", err)
	}
}

func TestSaveCertificateFileStripsDirectories(t *testing.T) {
	svc := newTestMediaService(t)

	rel, err := svc.SaveCertificateFile(5, "../../evil.pdf", 4, strings.NewReader("data"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if strings.Contains(rel, "..") {
		t.Errorf("stored path %q retains traversal", rel)
	}
	abs, err := svc.ResolveStoredPath(rel)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := os.Stat(abs); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}

func TestUploadSizeLimit(t *testing.T) {
	svc := newTestMediaService(t)

	if _, err := svc.AppendSessionChunk(1, 0, 4096, strings.NewReader("x")); !errors.Is(err, ErrUploadTooLarge) {
		t.Errorf("declared-size check: err = %v, want ErrUploadTooLarge", err)
	}

	big := strings.Repeat("x", 2048)
	if _, err := svc.AppendSessionChunk(1, 0, 10, strings.NewReader(big)); !errors.Is(err, ErrUploadTooLarge) {
		t.Errorf("actual-size check: err = %v, want ErrUploadTooLarge", err)
	}
}
