package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/cli/config"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var checkDB bool

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "check-db",
		Usage:       "Also check stored complaints against the category catalog",
		Destination: &checkDB,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the facility configuration and optionally check DB consistency",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if appCfg.Path() == "" {
				return goerr.New("--config is required")
			}

			facility, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			logger.Info("Configuration validation passed",
				"category_count", len(facility.Categories),
				"max_files", facility.Upload.MaxFiles,
				"max_file_size", facility.Upload.MaxFileSize,
				"allowed_mime_types", facility.Upload.AllowedMimeTypes,
			)
			for _, cat := range facility.Categories {
				logger.Info("Category validated", "id", cat.ID, "name", cat.Name, "location_count", len(cat.Locations))
			}

			if !checkDB {
				return nil
			}
			if len(facility.Categories) == 0 {
				logger.Info("No category catalog configured, skipping DB consistency check")
				return nil
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			complaints, err := repo.Complaint().List(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list complaints")
			}

			issues := 0
			for _, cp := range complaints {
				if !facility.HasCategory(cp.Category) {
					issues++
					logger.Warn("Complaint category is not in the catalog",
						"complaint_id", cp.ID,
						"category", cp.Category,
					)
				}
			}
			if issues > 0 {
				return fmt.Errorf("DB consistency check found %d issue(s)", issues)
			}

			logger.Info("DB consistency check passed", "complaint_count", len(complaints))
			return nil
		},
	}
}
