package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "odsplit.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
feed:
  source: https://example.com/feed.zip
overrides:
  path: ./overrides.json
  url: https://example.com/overrides.json
output:
  feed: ./out.zip
  report: ./report.json
export:
  pruneRoutes: ["R1", "R2"]
  roundCoordinates: true
  maxShapePoints: 200
`)

	jobConfig, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/feed.zip", jobConfig.Feed.Source)
	assert.Equal(t, "./overrides.json", jobConfig.Overrides.Path)
	assert.Equal(t, "https://example.com/overrides.json", jobConfig.Overrides.URL)
	assert.Equal(t, "./out.zip", jobConfig.Output.Feed)
	assert.Equal(t, []string{"R1", "R2"}, jobConfig.Export.PruneRoutes)
	assert.True(t, jobConfig.Export.RoundCoordinates)
	assert.Equal(t, 200, jobConfig.Export.MaxShapePoints)
}

func TestLoadRejectsMissingOutput(t *testing.T) {
	path := writeConfig(t, `
feed:
  source: ./feed.zip
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBadOverrideURL(t *testing.T) {
	path := writeConfig(t, `
feed:
  source: ./feed.zip
output:
  feed: ./out.zip
overrides:
  url: not a url
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
