package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"base_dir":          "/srv/vault",
		"index_driver":      "postgres",
		"database_dsn":      "postgres://localhost/docs",
		"keystore_provider": "passphrase",
		"key_file_path":     "/srv/vault/vault.key",
		"blob_backend":      "s3",
		"s3_bucket":         "bucket",
		"s3_region":         "eu-central-1",
		"s3_base_endpoint":  "http://127.0.0.1:9000/",
		"s3_access_key":     "access",
		"s3_secret_key":     "secret",
		"max_parallel":      8,
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "/srv/vault", cfg.BaseDir)
		assert.Equal(t, "postgres", cfg.IndexDriver)
		assert.Equal(t, "postgres://localhost/docs", cfg.DatabaseDSN)
		assert.Equal(t, "passphrase", cfg.KeyStoreProvider)
		assert.Equal(t, "/srv/vault/vault.key", cfg.KeyFilePath)
		assert.Equal(t, "s3", cfg.BlobBackend)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "eu-central-1", cfg.S3Region)
		assert.Equal(t, "http://127.0.0.1:9000/", cfg.S3BaseEndpoint)
		assert.Equal(t, "access", cfg.S3AccessKey)
		assert.Equal(t, "secret", cfg.S3SecretKey)
		assert.Equal(t, 8, cfg.MaxParallel)
	})

	t.Run("no config flag leaves values untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{BaseDir: "/keep", MaxParallel: 2}
		parseJson(cfg)

		assert.Equal(t, "/keep", cfg.BaseDir)
		assert.Equal(t, 2, cfg.MaxParallel)
	})

	t.Run("unset json keys keep defaults", func(t *testing.T) {
		partial := writeTempJSON(t, "", "partial.json", map[string]any{
			"database_dsn": "docs.db",
		})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "docs.db", cfg.DatabaseDSN)
		assert.Equal(t, DriverSQLite, cfg.IndexDriver)
		assert.Equal(t, 16, cfg.MaxParallel)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(t.TempDir(), "nope.json")}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
