// Package cli implements the docvault command-line interface: a thin
// one-shot command layer over the vault repository.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dkozyrev/docvault/internal/blob"
	"github.com/dkozyrev/docvault/internal/config"
	"github.com/dkozyrev/docvault/internal/cryptox"
	"github.com/dkozyrev/docvault/internal/filex"
	"github.com/dkozyrev/docvault/internal/keystore"
	"github.com/dkozyrev/docvault/internal/logging"
	"github.com/dkozyrev/docvault/internal/vault"
	"github.com/dkozyrev/docvault/internal/vault/index"

	_ "modernc.org/sqlite"
)

// App wires the vault from configuration and executes one subcommand per run.
type App struct {
	config  *config.Config
	engine  *cryptox.Engine
	repo    *vault.Repository
	sweeper *vault.Sweeper
	db      *sql.DB
	out     io.Writer
	log     logging.Logger
}

// NewApp builds the keystore, encryption engine, index and blob stores
// selected by cfg.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	if _, err := filex.EnsureDir(cfg.BaseDir); err != nil {
		return nil, err
	}

	ks, err := buildKeyStore(cfg)
	if err != nil {
		return nil, err
	}
	engine := cryptox.NewEngine(ks)

	db, err := openIndex(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var idx index.Repository
	if cfg.IndexDriver == config.DriverPostgres {
		idx = index.NewPostgresRepository(db)
	} else {
		idx = index.NewSQLiteRepository(db)
	}

	var repo *vault.Repository
	switch cfg.BlobBackend {
	case config.BlobS3:
		store, err := blob.NewS3Store(ctx, blob.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
		if err != nil {
			db.Close()
			return nil, err
		}
		repo, err = vault.NewRepository(engine, idx, store.Prefixed(vault.DocumentsDir), store.Prefixed(vault.ThumbnailsDir),
			filepath.Join(cfg.BaseDir, vault.TempDir), log, vault.WithMaxParallel(cfg.MaxParallel))
		if err != nil {
			db.Close()
			return nil, err
		}
	default:
		repo, err = vault.NewLocalRepository(engine, idx, cfg.BaseDir, log, vault.WithMaxParallel(cfg.MaxParallel))
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return &App{
		config:  cfg,
		engine:  engine,
		repo:    repo,
		sweeper: vault.NewSweeper(repo, log),
		db:      db,
		out:     os.Stdout,
		log:     log,
	}, nil
}

func buildKeyStore(cfg *config.Config) (keystore.KeyStore, error) {
	switch cfg.KeyStoreProvider {
	case config.ProviderKeyring:
		return keystore.NewKeyringStore(keystore.DefaultService), nil
	case config.ProviderFile:
		return keystore.NewFileStore(cfg.KeyFilePath), nil
	case config.ProviderPassphrase:
		pass, err := GetPassword(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("read passphrase: %w", err)
		}
		return keystore.NewPassphraseStore(cfg.KeyFilePath, pass), nil
	default:
		return nil, fmt.Errorf("unknown keystore provider %q", cfg.KeyStoreProvider)
	}
}

func openIndex(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if cfg.IndexDriver == config.DriverPostgres {
		return index.OpenPostgres(ctx, cfg.DatabaseDSN)
	}
	return index.OpenSQLite(ctx, cfg.DatabaseDSN)
}

// Run sweeps leftovers from previous runs, dispatches the subcommand and
// closes the index.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.db.Close()

	a.sweeper.SweepOnStart(ctx)

	return a.dispatch(ctx, args)
}
