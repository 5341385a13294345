package cleanup

import (
	"site-cleaner/core/cleaner"
	"site-cleaner/core/manifest"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Cleanup feature.
func NewFeature(fsys afero.Fs, sources *manifest.Registry, cfg cleaner.Config, logger *zap.Logger, db *gorm.DB) *Feature {
	svc := NewService(fsys, sources, nil, cfg, logger, db)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "cleanup"
}

// IsEnabled reports whether at least one manifest source is configured.
func (f *Feature) IsEnabled() bool {
	return len(f.service.Sources()) > 0
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
