package cleanup

import (
	"site-cleaner/core/cleaner"
	"site-cleaner/core/manifest"
	"site-cleaner/core/storage"

	"github.com/spf13/afero"
	"gorm.io/gorm"
)

// NewRegistry builds the manifest sources the configuration allows. The file source
// is always present; the object and storage sources need a client, the database
// source a connection.
func NewRegistry(fsys afero.Fs, cfg cleaner.Config, client storage.Client, bucket string, db *gorm.DB) *manifest.Registry {
	reg := manifest.NewRegistry(manifest.NewFileSource(fsys, cfg.Manifest))
	if client != nil {
		reg.Register(manifest.NewObjectSource(client, bucket, cfg.Manifest))
		reg.Register(manifest.NewListingSource(client, bucket, cfg.StoragePrefix))
	}
	if db != nil {
		reg.Register(manifest.NewDatabaseSource(db, cfg.Site))
	}
	return reg
}
