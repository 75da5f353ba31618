package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "database:\n  driver: sqlite\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "./data/projections.db", cfg.Database.DSN())
	assert.Equal(t, 20, cfg.Projection.DefaultNeighbors)
	assert.Equal(t, 1, cfg.Projection.Workers)
	assert.Equal(t, "Administrator", cfg.Projection.AuditUser)
	assert.Equal(t, "remote", cfg.Reduction.Method)
	assert.Equal(t, 200.0, cfg.Reduction.LearningRate)
	assert.Equal(t, 2000, cfg.Reduction.MaxIter)
	assert.Equal(t, "pca", cfg.Reduction.Init)
	assert.Equal(t, "barnes_hut", cfg.Reduction.TSNEMethod)
	assert.Equal(t, 10*time.Minute, cfg.Reduction.Timeout)
	assert.Equal(t, "minio", cfg.Storage.Type)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", `
database:
  driver: postgres
  host: db.internal
  name: cases
reduction:
  method: remote
  api_key_env: TEST_REDUCER_TOKEN
projection:
  workers: 4
`)
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("MINIO_ENDPOINT", "minio.internal:9000")
	t.Setenv("TEST_REDUCER_TOKEN", "token-1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "host=db.internal port=5432 user= password=secret dbname=cases sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, "minio.internal:9000", cfg.Storage.Endpoint)
	assert.Equal(t, "token-1", cfg.Reduction.APIKey)
	assert.Equal(t, 4, cfg.Projection.Workers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"unknown driver", "database:\n  driver: mongo\n", "unknown driver"},
		{"unknown method", "database:\n  driver: sqlite\nreduction:\n  method: umap\n", "unknown method"},
		{"zero workers", "database:\n  driver: sqlite\nprojection:\n  workers: 0\n", "workers"},
		{"zero neighbors", "database:\n  driver: sqlite\nprojection:\n  default_neighbors: 0\n", "default_neighbors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), "config.yaml", tt.body)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	writeConfig(t, filepath.Join(dir, "configs"), "config-test.yaml", "database:\n  driver: sqlite\nprojection:\n  audit_user: tester\n")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv(ProfileEnv, "test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tester", cfg.Projection.AuditUser)
}
