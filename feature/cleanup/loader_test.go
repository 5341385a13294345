package cleanup

import (
	"testing"

	"site-cleaner/core/cleaner"
	"site-cleaner/core/manifest"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoader(t *testing.T) {
	fsys := afero.NewMemMapFs()
	sources := manifest.NewRegistry(manifest.NewFileSource(fsys, testManifest))
	feature := NewFeature(fsys, sources, cleaner.Config{Destination: testRoot}, zap.NewNop(), nil)

	assert.Equal(t, "cleanup", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	err := feature.Load(app)
	assert.NoError(t, err)
}

func TestLoader_DisabledWithoutSources(t *testing.T) {
	feature := NewFeature(afero.NewMemMapFs(), manifest.NewRegistry(), cleaner.Config{}, zap.NewNop(), nil)
	assert.False(t, feature.IsEnabled())
}
