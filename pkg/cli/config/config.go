package config

import (
	"errors"
	"io/fs"
	"mime"
	"os"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/themis/pkg/domain/model/config"
	"github.com/urfave/cli/v3"
)

var categoryIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// AppConfig is the facility configuration file
type AppConfig struct {
	Categories []Category `toml:"category"`
	Upload     Upload     `toml:"upload"`

	path string
}

// Category is one entry of the category catalog
type Category struct {
	ID        string   `toml:"id"`
	Name      string   `toml:"name"`
	Locations []string `toml:"locations"`
}

// Validate checks if the Category is valid
func (c *Category) Validate() error {
	if !categoryIDPattern.MatchString(c.ID) {
		return goerr.Wrap(ErrInvalidCategoryID, "category ID must be lowercase alphanumeric", goerr.V(CategoryIDKey, c.ID))
	}
	if strings.TrimSpace(c.Name) == "" {
		return goerr.Wrap(ErrMissingName, "category name is required", goerr.V(CategoryIDKey, c.ID))
	}
	return nil
}

// Upload holds attachment limits. Zero values fall back to the defaults.
type Upload struct {
	MaxFiles         int      `toml:"max_files"`
	MaxFileSizeMB    int64    `toml:"max_file_size_mb"`
	AllowedMimeTypes []string `toml:"allowed_mime_types"`
}

// Validate checks if the Upload limits are valid
func (u *Upload) Validate() error {
	if u.MaxFiles < 0 {
		return goerr.Wrap(ErrInvalidUploadLimit, "max_files must not be negative", goerr.V("max_files", u.MaxFiles))
	}
	if u.MaxFileSizeMB < 0 {
		return goerr.Wrap(ErrInvalidUploadLimit, "max_file_size_mb must not be negative", goerr.V("max_file_size_mb", u.MaxFileSizeMB))
	}
	for _, mt := range u.AllowedMimeTypes {
		if _, _, err := mime.ParseMediaType(mt); err != nil || !strings.Contains(mt, "/") {
			return goerr.Wrap(ErrInvalidMimeType, "allowed_mime_types contains an invalid entry", goerr.V(MimeTypeKey, mt))
		}
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	ids := make(map[string]bool)
	names := make(map[string]bool)
	for i, cat := range a.Categories {
		if err := cat.Validate(); err != nil {
			return goerr.Wrap(err, "invalid category", goerr.V(CategoryIndexKey, i))
		}
		if ids[cat.ID] {
			return goerr.Wrap(ErrDuplicateCategoryID, "duplicate category ID", goerr.V(CategoryIDKey, cat.ID))
		}
		ids[cat.ID] = true

		name := strings.ToLower(cat.Name)
		if names[name] {
			return goerr.Wrap(ErrInvalidConfig, "duplicate category name", goerr.V("name", cat.Name))
		}
		names[name] = true
	}

	if err := a.Upload.Validate(); err != nil {
		return goerr.Wrap(err, "invalid upload section")
	}
	return nil
}

// LoadAppConfiguration loads the facility configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path),
			goerr.V("reason", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// Flags returns CLI flags for the configuration file
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Facility configuration file (TOML). Without it any category is accepted.",
			Sources:     cli.EnvVars("THEMIS_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Path returns the configured file path
func (a *AppConfig) Path() string {
	return a.path
}

// Configure loads the file named by --config and returns the domain config.
// Without a file the defaults are used.
func (a *AppConfig) Configure() (*domainConfig.FacilityConfig, error) {
	if a.path == "" {
		return domainConfig.DefaultFacilityConfig(), nil
	}

	loaded, err := LoadAppConfiguration(a.path)
	if err != nil {
		return nil, err
	}
	loaded.path = a.path
	*a = *loaded

	return a.ToDomainFacilityConfig(), nil
}

// ToDomainFacilityConfig converts AppConfig to the domain FacilityConfig
func (a *AppConfig) ToDomainFacilityConfig() *domainConfig.FacilityConfig {
	categories := make([]domainConfig.Category, len(a.Categories))
	for i, cat := range a.Categories {
		categories[i] = domainConfig.Category{
			ID:        cat.ID,
			Name:      cat.Name,
			Locations: cat.Locations,
		}
	}

	upload := domainConfig.DefaultUploadPolicy()
	if a.Upload.MaxFiles > 0 {
		upload.MaxFiles = a.Upload.MaxFiles
	}
	if a.Upload.MaxFileSizeMB > 0 {
		upload.MaxFileSize = a.Upload.MaxFileSizeMB << 20
	}
	if len(a.Upload.AllowedMimeTypes) > 0 {
		upload.AllowedMimeTypes = a.Upload.AllowedMimeTypes
	}

	return &domainConfig.FacilityConfig{
		Categories: categories,
		Upload:     upload,
	}
}
