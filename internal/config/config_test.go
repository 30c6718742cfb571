package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sample-reducer/internal/validation"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "./inventory.db", c.InventoryDB)
	assert.Equal(t, "./reports", c.OutputDir)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "{timestamp}_{status}_{run_id}", c.ReportNameFormat)
	assert.True(t, c.ReportsEnabled())
	assert.Equal(t, validation.AllOrNothing, c.Policy())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
inventory_db: /data/lab.db
output_dir: /data/reports
log_level: debug
log_json: true
write_report: false
validation_policy: skip-invalid
`)

	c, err := Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, "/data/lab.db", c.InventoryDB)
	assert.Equal(t, "/data/reports", c.OutputDir)
	assert.Equal(t, "debug", c.LogLevel)
	assert.True(t, c.LogJSON)
	assert.False(t, c.ReportsEnabled())
	assert.Equal(t, validation.SkipInvalid, c.Policy())
	assert.Equal(t, "{timestamp}_{status}_{run_id}", c.ReportNameFormat)
}

func TestLoad_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.yaml")

	c, err := Load(missing, true)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	_, err = Load(missing, false)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "log_level: [debug"},
		{"bad level", "log_level: loud"},
		{"bad policy", "validation_policy: best-effort"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), false)
			assert.Error(t, err)
		})
	}
}

func TestApply(t *testing.T) {
	source := map[string]string{
		KeyInventoryDB:  "override.db",
		KeyLogJSON:      "true",
		KeyWriteReport:  "0",
		KeyLogLevel:     "warn",
		KeySectionsFile: "sections.yaml",
	}
	get := func(key string) (string, bool) {
		v, ok := source[key]
		return v, ok
	}

	c := Default()
	require.NoError(t, c.Apply(get))
	assert.Equal(t, "override.db", c.InventoryDB)
	assert.Equal(t, "./reports", c.OutputDir)
	assert.Equal(t, "sections.yaml", c.SectionsFile)
	assert.True(t, c.LogJSON)
	assert.False(t, c.ReportsEnabled())
	assert.Equal(t, "warn", c.LogLevel)

	source[KeyLogJSON] = "maybe"
	assert.Error(t, Default().Apply(get))
}
