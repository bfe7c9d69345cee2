package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tally/internal/modules/mirror/domain"
	mirrorout "tally/internal/modules/mirror/port/out"
	apperrors "tally/internal/platform/errors"
)

type handleRecord struct {
	DocumentID string `json:"documentId"`
}

type FileHandleStore struct {
	path string
}

func NewFileHandleStore(dataDir string) mirrorout.HandleStore {
	return &FileHandleStore{path: filepath.Join(dataDir, "mirror-handle.json")}
}

func (s *FileHandleStore) Load(_ context.Context) (domain.Handle, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Handle{}, nil
		}
		return domain.Handle{}, fmt.Errorf("%w: read mirror handle: %v", apperrors.ErrStorageUnavailable, err)
	}
	record := handleRecord{}
	if err := json.Unmarshal(payload, &record); err != nil {
		return domain.Handle{}, fmt.Errorf("%w: decode mirror handle: %v", apperrors.ErrStorageUnavailable, err)
	}
	return domain.Handle{DocumentID: record.DocumentID}, nil
}

func (s *FileHandleStore) Save(_ context.Context, handle domain.Handle) error {
	payload, err := json.MarshalIndent(handleRecord{DocumentID: handle.DocumentID}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode mirror handle: %v", apperrors.ErrStorageUnavailable, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: create data dir: %v", apperrors.ErrStorageUnavailable, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("%w: write mirror handle: %v", apperrors.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: replace mirror handle: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *FileHandleStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove mirror handle: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}
