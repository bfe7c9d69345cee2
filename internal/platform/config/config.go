package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const settingsFile = "settings.yaml"

type Config struct {
	DataDir  string
	DBPath   string
	Settings Settings
}

// Settings is the optional settings.yaml next to the data files. Every
// field has a working default; the file only exists to point the mirror
// at a non-default document service.
type Settings struct {
	Mirror MirrorSettings `yaml:"mirror"`
}

type MirrorSettings struct {
	Endpoint        string `yaml:"endpoint"`
	CredentialsFile string `yaml:"credentials_file"`
	DocumentTitle   string `yaml:"document_title"`
}

// New resolves the data directory. An empty path means the per-user
// default under the home directory.
func New(dataPath string) (Config, error) {
	if dataPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home dir: %w", err)
		}
		dataPath = filepath.Join(home, ".tally")
	}
	cfg := Config{
		DataDir: dataPath,
		DBPath:  filepath.Join(dataPath, "tally.db"),
	}
	settings, err := loadSettings(filepath.Join(dataPath, settingsFile))
	if err != nil {
		return Config{}, err
	}
	cfg.Settings = settings
	return cfg, nil
}

func loadSettings(path string) (Settings, error) {
	settings := Settings{}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}
