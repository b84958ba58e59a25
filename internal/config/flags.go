package config

import (
	"flag"
	"os"

	"github.com/dkozyrev/docvault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-dir string   base directory for blobs and the temp dir
//	-i string     index driver: "sqlite" or "postgres"
//	-d string     index DSN (sqlite path or pgx DSN)
//	-k string     keystore provider: "keyring", "file" or "passphrase"
//	-kf string    key file path (file/passphrase providers)
//	-blob string  blob backend: "fs" or "s3"
//	-b string     S3 bucket name
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-u string     S3 access key
//	-p string     S3 secret key
//	-j int        max parallel page operations
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, leaving subcommands and their arguments untouched.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-dir", "-i", "-d", "-k", "-kf", "-blob", "-b", "-g", "-e", "-u", "-p", "-j"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.BaseDir, "dir", config.BaseDir, "base directory")
	fs.StringVar(&config.IndexDriver, "i", config.IndexDriver, "index driver (sqlite|postgres)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "index DSN")
	fs.StringVar(&config.KeyStoreProvider, "k", config.KeyStoreProvider, "keystore provider (keyring|file|passphrase)")
	fs.StringVar(&config.KeyFilePath, "kf", config.KeyFilePath, "key file path")
	fs.StringVar(&config.BlobBackend, "blob", config.BlobBackend, "blob backend (fs|s3)")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.IntVar(&config.MaxParallel, "j", config.MaxParallel, "max parallel page operations")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
