package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/GabrielLegend/tca-plugin-sonarqube/utils"
)

//go:embed settings.yml
var defaultSettingsContent []byte

// ServerCredentials describes one SonarQube endpoint together with the account
// used against it. An empty password marks Username as an access token.
type ServerCredentials struct {
	URL        string `yaml:"url"`
	Port       int    `yaml:"port"`
	BasePath   string `yaml:"base_path"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	ProjectKey string `yaml:"project_key"`
}

// Settings holds the credential entries for both execution modes.
type Settings struct {
	LocalUser  *ServerCredentials `yaml:"sq_local_user"`
	CommonUser *ServerCredentials `yaml:"sq_common_user"`
}

// LoadSettings reads the settings file named by SQ_SETTINGS_FILE, falling back
// to settings.yml under the plugin home and finally to the compiled in defaults.
// A missing local entry is filled from the defaults so LOCAL mode always has an
// account to work with.
func LoadSettings() (*Settings, error) {
	explicit := os.Getenv(SettingsFileEnvVariable)
	path := explicit
	if path == "" {
		path = filepath.Join(PluginHome(), "settings.yml")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if explicit != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, utils.NewConfigurationError("failed to read settings file %s: %s", path, err)
		}
		content = defaultSettingsContent
	}
	settings := &Settings{}
	if err = yaml.Unmarshal(content, settings); err != nil {
		return nil, utils.NewConfigurationError("malformed settings file %s: %s", path, err)
	}
	if settings.LocalUser == nil {
		defaults := &Settings{}
		if err = yaml.Unmarshal(defaultSettingsContent, defaults); err != nil {
			return nil, fmt.Errorf("parsing built in settings: %w", err)
		}
		settings.LocalUser = defaults.LocalUser
	}
	return settings, nil
}
