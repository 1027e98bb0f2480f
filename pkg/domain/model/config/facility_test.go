package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/model/config"
)

func TestUploadPolicyAllowsMimeType(t *testing.T) {
	policy := config.DefaultUploadPolicy()

	gt.B(t, policy.AllowsMimeType("image/png")).True()
	gt.B(t, policy.AllowsMimeType("IMAGE/JPEG")).True()
	gt.B(t, policy.AllowsMimeType("application/pdf; charset=binary")).True()
	gt.B(t, policy.AllowsMimeType("application/zip")).False()

	open := config.UploadPolicy{}
	gt.B(t, open.AllowsMimeType("application/zip")).True()
}

func TestFacilityConfigCategory(t *testing.T) {
	cfg := &config.FacilityConfig{
		Categories: []config.Category{
			{ID: "washroom", Name: "Washroom", Locations: []string{"T1", "T2"}},
		},
	}

	gt.B(t, cfg.HasCategory("washroom")).True()
	gt.B(t, cfg.HasCategory("Hallway")).False()
	gt.Value(t, cfg.CanonicalCategory("washroom")).Equal("Washroom")

	gt.B(t, config.DefaultFacilityConfig().HasCategory("Anything")).True()
}
