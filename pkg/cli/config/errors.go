package config

import "errors"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound      = errors.New("configuration file not found")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrDuplicateCategoryID = errors.New("duplicate category ID")
	ErrInvalidCategoryID   = errors.New("invalid category ID format")
	ErrMissingName         = errors.New("name is required")
	ErrInvalidUploadLimit  = errors.New("invalid upload limit")
	ErrInvalidMimeType     = errors.New("invalid MIME type")
)

// Context keys for error values
const (
	ConfigPathKey    = "config_path"
	CategoryIDKey    = "category_id"
	CategoryIndexKey = "category_index"
	MimeTypeKey      = "mime_type"
)
