package vault

import (
	"context"

	"github.com/dkozyrev/docvault/internal/logging"
)

// Sweeper clears leftover decrypted temp files around the application
// lifecycle: once at startup (files orphaned by a crash) and whenever the
// host signals that the app is going to the background or shutting down.
//
// Sweeps never fail the caller. A file that cannot be shredded right now is
// logged and retried on the next sweep.
type Sweeper struct {
	repo *Repository
	log  logging.Logger
}

// NewSweeper returns a sweeper bound to the repository's temp directory.
func NewSweeper(repo *Repository, log logging.Logger) *Sweeper {
	return &Sweeper{repo: repo, log: log.With("component", "sweeper")}
}

// SweepOnStart removes temp files left behind by a previous run.
func (s *Sweeper) SweepOnStart(ctx context.Context) {
	s.sweep(ctx, "start")
}

// SweepOnBackground removes temp files when the app loses foreground or
// begins shutdown, so plaintext does not linger while the app is not in use.
func (s *Sweeper) SweepOnBackground(ctx context.Context) {
	s.sweep(ctx, "background")
}

func (s *Sweeper) sweep(ctx context.Context, trigger string) {
	if err := s.repo.CleanupTempFiles(ctx); err != nil {
		s.log.Warn(ctx, "temp sweep failed", "trigger", trigger, "error", err)
		return
	}
	s.log.Debug(ctx, "temp dir swept", "trigger", trigger, "dir", s.repo.TempDirPath())
}
