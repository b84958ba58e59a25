// Package config handles configuration for the vault, including defaults,
// JSON overlay, and command-line flags.
package config

import (
	"os"
	"path/filepath"
)

// Keystore provider names accepted in KeyStoreProvider.
const (
	ProviderKeyring    = "keyring"
	ProviderFile       = "file"
	ProviderPassphrase = "passphrase"
)

// Index driver names accepted in IndexDriver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Blob backend names accepted in BlobBackend.
const (
	BlobFS = "fs"
	BlobS3 = "s3"
)

// Config holds runtime settings for the vault.
//
// Fields:
//   - BaseDir: root directory for blobs, the temp dir and the default index file.
//   - IndexDriver: "sqlite" or "postgres".
//   - DatabaseDSN: index DSN; for sqlite a file path, for postgres a pgx DSN.
//   - KeyStoreProvider: "keyring", "file" or "passphrase".
//   - KeyFilePath: key location for the file and passphrase providers.
//   - BlobBackend: "fs" (local, shreddable) or "s3".
//   - S3Bucket / S3Region / S3BaseEndpoint / S3AccessKey / S3SecretKey:
//     object storage settings when BlobBackend is "s3".
//   - MaxParallel: fan-out bound for multi-page encrypt/decrypt.
type Config struct {
	BaseDir          string
	IndexDriver      string
	DatabaseDSN      string
	KeyStoreProvider string
	KeyFilePath      string
	BlobBackend      string
	S3Bucket         string
	S3Region         string
	S3BaseEndpoint   string
	S3AccessKey      string
	S3SecretKey      string
	MaxParallel      int
}

// LoadDefaults populates Config with local, single-user defaults: an FS blob
// store and a SQLite index under ~/.docvault, keyed by the OS keyring.
func (c *Config) LoadDefaults() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c.BaseDir = filepath.Join(home, ".docvault")
	c.IndexDriver = DriverSQLite
	c.DatabaseDSN = filepath.Join(c.BaseDir, "index.db")
	c.KeyStoreProvider = ProviderKeyring
	c.KeyFilePath = filepath.Join(c.BaseDir, "vault.key")
	c.BlobBackend = BlobFS
	c.S3Bucket = "docvault"
	c.S3Region = "us-east-1"
	c.MaxParallel = 16
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
