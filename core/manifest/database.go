package manifest

import (
	"context"
	"fmt"
	"time"

	"site-cleaner/core/cleaner"

	"gorm.io/gorm"
)

// SiteFileRecord is one output path recorded by a generator.
type SiteFileRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Site      string    `gorm:"size:191;not null;uniqueIndex:idx_site_path"`
	Path      string    `gorm:"size:512;not null;uniqueIndex:idx_site_path"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName overrides the default table name.
func (SiteFileRecord) TableName() string {
	return "site_files"
}

// DatabaseSource reads the recorded outputs of one site.
type DatabaseSource struct {
	db   *gorm.DB
	site string
}

// NewDatabaseSource creates a source for site.
func NewDatabaseSource(db *gorm.DB, site string) *DatabaseSource {
	return &DatabaseSource{db: db, site: site}
}

// Name returns "database".
func (s *DatabaseSource) Name() string {
	return "database"
}

// Load selects the paths of the site, ordered by path.
func (s *DatabaseSource) Load(ctx context.Context) ([]cleaner.SiteFile, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database is not connected")
	}

	var paths []string
	err := s.db.WithContext(ctx).
		Model(&SiteFileRecord{}).
		Where("site = ?", s.site).
		Order("path").
		Pluck("path", &paths).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load site files for %s: %w", s.site, err)
	}

	return toSiteFiles(paths)
}
