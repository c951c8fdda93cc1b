package cli

import (
	"github.com/eshaffer321/cropplanner/internal/adapters/agriapi"
	"github.com/eshaffer321/cropplanner/internal/application/planner"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/config"
	"github.com/eshaffer321/cropplanner/internal/infrastructure/exports"
)

// NewCollaborator creates the agricultural data client, or nil when no
// service URL is configured.
func NewCollaborator(cfg *config.Config) planner.Collaborator {
	if cfg.Collaborator.BaseURL == "" {
		return nil
	}
	return agriapi.NewClient(cfg.Collaborator.BaseURL, cfg.Collaborator.Timeout())
}

// ExportConfig maps file configuration onto the export sink.
func ExportConfig(cfg *config.Config) exports.Config {
	s3 := cfg.Exports.S3
	return exports.Config{
		Driver: cfg.Exports.Driver,
		Dir:    cfg.Exports.Dir,
		S3: exports.S3Config{
			Bucket:    s3.Bucket,
			Region:    s3.Region,
			Prefix:    s3.Prefix,
			Endpoint:  s3.Endpoint,
			PathStyle: s3.PathStyle,
		},
	}
}
