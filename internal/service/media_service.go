package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/certifex/certifex-backend/internal/config"
)

// Media errors.
var (
	ErrChunkOutOfOrder = errors.New("chunk index does not match the expected next chunk")
	ErrNoMedia         = errors.New("no media recorded for this session")
	ErrUploadTooLarge  = errors.New("upload exceeds the configured size limit")
	ErrPathEscape      = errors.New("media path escapes the media root")
)

// MediaService stores proctoring recordings and certificate files under
// the media root. Session recordings arrive as ordered chunks appended to
// a single file; chunk 0 restarts the recording.
type MediaService struct {
	cfg *config.Config
	log zerolog.Logger

	// Serializes appends per session so concurrent chunks from a flaky
	// client cannot interleave.
	mu sync.Mutex
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config, log zerolog.Logger) *MediaService {
	return &MediaService{
		cfg: cfg,
		log: log.With().Str("component", "media_service").Logger(),
	}
}

// AppendSessionChunk appends one recording chunk and returns the next
// expected chunk index. A chunk index of 0 discards any earlier
// recording and starts over; any other index must match the counter left
// by the previous append.
func (s *MediaService) AppendSessionChunk(sessionID int64, chunkIndex int, size int64, src io.Reader) (nextChunkIndex int, err error) {
	if size > s.cfg.MaxUploadBytes {
		return 0, ErrUploadTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create media dir: %w", err)
	}

	recording := filepath.Join(dir, "recording.webm")
	counter := filepath.Join(dir, "next_chunk")

	expected := 0
	if data, err := os.ReadFile(counter); err == nil {
		if n, perr := strconv.Atoi(strings.TrimSpace(string(data))); perr == nil {
			expected = n
		}
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if chunkIndex == 0 {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	} else if chunkIndex != expected {
		return expected, ErrChunkOutOfOrder
	}

	f, err := os.OpenFile(recording, flags, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open recording: %w", err)
	}
	written, err := io.Copy(f, io.LimitReader(src, s.cfg.MaxUploadBytes+1))
	closeErr := f.Close()
	if err != nil {
		return 0, fmt.Errorf("write chunk: %w", err)
	}
	if closeErr != nil {
		return 0, fmt.Errorf("close recording: %w", closeErr)
	}
	if written > s.cfg.MaxUploadBytes {
		return 0, ErrUploadTooLarge
	}

	next := chunkIndex + 1
	if err := os.WriteFile(counter, []byte(strconv.Itoa(next)), 0o644); err != nil {
		return 0, fmt.Errorf("write chunk counter: %w", err)
	}

	s.log.Debug().
		Int64("session_id", sessionID).
		Int("chunk", chunkIndex).
		Int64("bytes", written).
		Msg("Media chunk appended")
	return next, nil
}

// SessionRecordingPath returns the on-disk path of a session's recording
// for admin playback.
func (s *MediaService) SessionRecordingPath(sessionID int64) (string, error) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return "", err
	}
	recording := filepath.Join(dir, "recording.webm")
	if _, err := os.Stat(recording); err != nil {
		return "", ErrNoMedia
	}
	return recording, nil
}

// RemoveSessionRecording deletes a session's recording directory. Called
// when an admin purges a result; a missing directory is not an error.
func (s *MediaService) RemoveSessionRecording(sessionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

// SaveCertificateFile stores an uploaded certificate document and returns
// its path relative to the media root.
func (s *MediaService) SaveCertificateFile(userID int64, filename string, size int64, src io.Reader) (string, error) {
	if size > s.cfg.MaxUploadBytes {
		return "", ErrUploadTooLarge
	}

	rel := filepath.Join("certificates", strconv.FormatInt(userID, 10), filepath.Base(filename))
	abs, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create certificate dir: %w", err)
	}

	f, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("open certificate file: %w", err)
	}
	written, err := io.Copy(f, io.LimitReader(src, s.cfg.MaxUploadBytes+1))
	closeErr := f.Close()
	if err != nil {
		return "", fmt.Errorf("write certificate file: %w", err)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close certificate file: %w", closeErr)
	}
	if written > s.cfg.MaxUploadBytes {
		_ = os.Remove(abs)
		return "", ErrUploadTooLarge
	}
	return rel, nil
}

// ResolveStoredPath maps a stored relative path back to disk, refusing
// anything that would leave the media root.
func (s *MediaService) ResolveStoredPath(rel string) (string, error) {
	return s.resolve(rel)
}

func (s *MediaService) sessionDir(sessionID int64) (string, error) {
	return s.resolve(filepath.Join("sessions", strconv.FormatInt(sessionID, 10)))
}

func (s *MediaService) resolve(rel string) (string, error) {
	root, err := filepath.Abs(s.cfg.MediaRoot)
	if err != nil {
		return "", fmt.Errorf("resolve media root: %w", err)
	}
	abs := filepath.Clean(filepath.Join(root, rel))
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", ErrPathEscape
	}
	return abs, nil
}
