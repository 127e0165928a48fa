package ui

import (
	"context"
	"log/slog"

	"github.com/sadopc/voidfinder/internal/noise"
	"github.com/sadopc/voidfinder/internal/ops"
	"github.com/sadopc/voidfinder/internal/scanner"
)

// Backend is where the app scans and relocates: the local disk or a
// remote host over SFTP.
type Backend struct {
	Scanner *scanner.Scanner
	Lister  scanner.Lister
	Trasher ops.Trasher
	Rules   *noise.Rules

	// Stat fills size and mtime in the details view. Nil leaves them unknown.
	Stat ops.StatFunc
	// Open shows a folder in a file manager. Nil disables the key.
	Open func(path string) error

	// ScanContext bounds a scan, for example with a remote timeout. Nil
	// means no bound.
	ScanContext func(parent context.Context) (context.Context, context.CancelFunc)

	// Target is user@host for remote scans, empty for local ones.
	Target string
	Logger *slog.Logger
}

// LocalBackend scans and trashes on this machine. An empty trashDir uses
// the platform trash.
func LocalBackend(opts scanner.Options, trashDir string) Backend {
	lister := scanner.NewLocalLister()
	return Backend{
		Scanner: scanner.New(lister, opts),
		Lister:  lister,
		Trasher: ops.NewLocalTrash(trashDir),
		Rules:   opts.Rules,
		Stat:    ops.LocalStat,
		Open:    ops.OpenInFileManager,
		Logger:  opts.Logger,
	}
}
