package infra

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/fpt/notice-cli/internal/repository"
)

// FileTranscriptRepository stores a transcript as indented JSON.
type FileTranscriptRepository struct {
	filePath string
}

func NewFileTranscriptRepository(filePath string) *FileTranscriptRepository {
	return &FileTranscriptRepository{filePath: filePath}
}

// Path returns the file the repository writes.
func (fr *FileTranscriptRepository) Path() string { return fr.filePath }

// Load implements repository.TranscriptRepository. A missing file yields an empty record.
func (fr *FileTranscriptRepository) Load() (repository.TranscriptRecord, error) {
	if fr.filePath == "" {
		return repository.TranscriptRecord{}, errors.New("no file path specified")
	}

	data, err := os.ReadFile(fr.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return repository.TranscriptRecord{}, nil
		}
		return repository.TranscriptRecord{}, errors.Wrapf(err, "failed to read transcript file %s", fr.filePath)
	}

	var record repository.TranscriptRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return repository.TranscriptRecord{}, errors.Wrapf(err, "failed to parse transcript from %s", fr.filePath)
	}
	return record, nil
}

// Save implements repository.TranscriptRepository
func (fr *FileTranscriptRepository) Save(record repository.TranscriptRecord) error {
	if fr.filePath == "" {
		return errors.New("no file path specified")
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to serialize transcript")
	}

	dir := filepath.Dir(fr.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}
	if err := os.WriteFile(fr.filePath, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write transcript file %s", fr.filePath)
	}
	return nil
}
