package config

import (
	"encoding/json"
	"os"

	"github.com/dkozyrev/docvault/internal/flagx"
)

// JsonConfig mirrors Config for JSON unmarshalling. It is an intermediate
// DTO: after unmarshalling, non-empty fields are copied into the runtime
// Config so unset JSON keys keep their defaults.
type JsonConfig struct {
	BaseDir          string `json:"base_dir"`
	IndexDriver      string `json:"index_driver"`
	DatabaseDSN      string `json:"database_dsn"`
	KeyStoreProvider string `json:"keystore_provider"`
	KeyFilePath      string `json:"key_file_path"`
	BlobBackend      string `json:"blob_backend"`
	S3Bucket         string `json:"s3_bucket"`
	S3Region         string `json:"s3_region"`
	S3BaseEndpoint   string `json:"s3_base_endpoint"`
	S3AccessKey      string `json:"s3_access_key"`
	S3SecretKey      string `json:"s3_secret_key"`
	MaxParallel      int    `json:"max_parallel"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config flag; when
// neither is set, no file is loaded. An unreadable or invalid file panics:
// a config the user pointed at explicitly must not be silently ignored.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JSONConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.BaseDir != "" {
		config.BaseDir = c.BaseDir
	}
	if c.IndexDriver != "" {
		config.IndexDriver = c.IndexDriver
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.KeyStoreProvider != "" {
		config.KeyStoreProvider = c.KeyStoreProvider
	}
	if c.KeyFilePath != "" {
		config.KeyFilePath = c.KeyFilePath
	}
	if c.BlobBackend != "" {
		config.BlobBackend = c.BlobBackend
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.S3AccessKey != "" {
		config.S3AccessKey = c.S3AccessKey
	}
	if c.S3SecretKey != "" {
		config.S3SecretKey = c.S3SecretKey
	}
	if c.MaxParallel > 0 {
		config.MaxParallel = c.MaxParallel
	}
}
