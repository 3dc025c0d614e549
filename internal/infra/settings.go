package infra

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// SettingsDirName is the per-project and per-user settings directory.
const SettingsDirName = ".notice"

var settingsFileNames = []string{"settings.yaml", "settings.yml", "settings.json"}

// FileSettingsRepository represents file-persisted settings repository
type FileSettingsRepository struct {
	configPath string // Specific path (empty means search for file)
}

// InMemorySettingsRepository represents in-memory-only settings repository
type InMemorySettingsRepository struct {
	data   []byte
	format string
}

func NewFileSettingsRepository(configPath string) *FileSettingsRepository {
	return &FileSettingsRepository{configPath: configPath}
}

func NewInMemorySettingsRepository() *InMemorySettingsRepository {
	return &InMemorySettingsRepository{format: "json"}
}

// NewInMemorySettingsRepositoryWithData seeds the repository, mainly for tests.
func NewInMemorySettingsRepositoryWithData(data []byte, format string) *InMemorySettingsRepository {
	return &InMemorySettingsRepository{data: append([]byte(nil), data...), format: format}
}

func (fr *FileSettingsRepository) resolve() (string, error) {
	if fr.configPath != "" {
		return fr.configPath, nil
	}
	return fr.FindSettingsFile()
}

func (fr *FileSettingsRepository) Load() ([]byte, error) {
	configPath, err := fr.resolve()
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		return nil, errors.New("no settings file found")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read settings file %s", configPath)
	}
	return data, nil
}

func (fr *FileSettingsRepository) Save(data []byte) error {
	configPath, _ := fr.resolve()
	if configPath == "" {
		configPath = filepath.Join(SettingsDirName, "settings.json")
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write settings file")
	}
	return nil
}

// FindSettingsFile searches ./.notice then $HOME/.notice, preferring YAML
// over JSON within each directory. Returns "" when nothing exists.
func (fr *FileSettingsRepository) FindSettingsFile() (string, error) {
	dirs := []string{SettingsDirName}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, SettingsDirName))
	}

	for _, dir := range dirs {
		for _, name := range settingsFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}
	return "", nil
}

func (fr *FileSettingsRepository) Format() string {
	path, _ := fr.resolve()
	return FormatForPath(path)
}

// FormatForPath maps a file extension to a settings encoding.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func (mr *InMemorySettingsRepository) Load() ([]byte, error) {
	if mr.data == nil {
		return nil, errors.New("no data stored in memory repository")
	}
	return mr.data, nil
}

func (mr *InMemorySettingsRepository) Save(data []byte) error {
	mr.data = append([]byte(nil), data...)
	return nil
}

func (mr *InMemorySettingsRepository) FindSettingsFile() (string, error) {
	return "", nil
}

func (mr *InMemorySettingsRepository) Format() string {
	return mr.format
}
