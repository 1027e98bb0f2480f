package config

import "strings"

const (
	// DefaultMaxFiles is the number of files accepted in one upload request
	DefaultMaxFiles = 5
	// DefaultMaxFileSize is the per-file ceiling in bytes (10 MiB)
	DefaultMaxFileSize int64 = 10 << 20
)

// DefaultAllowedMimeTypes are accepted when no upload policy is configured
var DefaultAllowedMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
}

// Category is a facility area complaints can be filed against
type Category struct {
	ID        string
	Name      string
	Locations []string
}

// UploadPolicy bounds attachment uploads
type UploadPolicy struct {
	MaxFiles         int
	MaxFileSize      int64
	AllowedMimeTypes []string
}

// DefaultUploadPolicy returns the policy used when nothing is configured
func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		MaxFiles:         DefaultMaxFiles,
		MaxFileSize:      DefaultMaxFileSize,
		AllowedMimeTypes: append([]string(nil), DefaultAllowedMimeTypes...),
	}
}

// AllowsMimeType reports whether files of mimeType may be uploaded. An empty
// allow list accepts anything.
func (p UploadPolicy) AllowsMimeType(mimeType string) bool {
	if len(p.AllowedMimeTypes) == 0 {
		return true
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	for _, allowed := range p.AllowedMimeTypes {
		if strings.EqualFold(allowed, mimeType) {
			return true
		}
	}
	return false
}

// FacilityConfig holds the facility catalog and upload limits
type FacilityConfig struct {
	Categories []Category
	Upload     UploadPolicy
}

// DefaultFacilityConfig returns a config with no category restriction
func DefaultFacilityConfig() *FacilityConfig {
	return &FacilityConfig{Upload: DefaultUploadPolicy()}
}

// HasCategory reports whether name is a configured category. An empty catalog
// accepts any category.
func (c *FacilityConfig) HasCategory(name string) bool {
	if c == nil || len(c.Categories) == 0 {
		return true
	}
	for _, cat := range c.Categories {
		if strings.EqualFold(cat.Name, name) || strings.EqualFold(cat.ID, name) {
			return true
		}
	}
	return false
}

// CanonicalCategory returns the configured name for a category ID or name
func (c *FacilityConfig) CanonicalCategory(name string) string {
	if c == nil {
		return name
	}
	for _, cat := range c.Categories {
		if strings.EqualFold(cat.Name, name) || strings.EqualFold(cat.ID, name) {
			return cat.Name
		}
	}
	return name
}
