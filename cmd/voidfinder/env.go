package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sadopc/voidfinder/internal/config"
	"github.com/sadopc/voidfinder/internal/logging"
	"github.com/sadopc/voidfinder/internal/noise"
	"github.com/sadopc/voidfinder/internal/remote"
	"github.com/sadopc/voidfinder/internal/scanner"
	"github.com/sadopc/voidfinder/internal/ui"
	"github.com/spf13/cobra"
)

// env is the effective configuration of one command run.
type env struct {
	cfg    *config.Config
	rules  *noise.Rules
	logger *slog.Logger

	closers []io.Closer
}

// setup loads the config file, applies flag overrides and opens the log.
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("cannot open log: %w", err)
	}
	logger.Debug("configuration loaded", "noise", cfg.Noise.Names, "trash_dir", cfg.Trash.Dir)

	return &env{
		cfg:     cfg,
		rules:   noise.New(cfg.Noise.Names...),
		logger:  logger,
		closers: []io.Closer{closer},
	}, nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	p, err := config.Path()
	if err != nil {
		return config.Default(), nil
	}
	return config.Load(p)
}

// applyFlags overrides config values with the flags the user set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("noise") {
		cfg.Noise.Names = noiseNames
	}
	if flags.Changed("trash-dir") {
		cfg.Trash.Dir = trashDir
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if noPreCount {
		cfg.Scan.PreCount = false
	}
	if flags.Changed("ssh-port") {
		cfg.SSH.Port = sshPort
	}
	if flags.Changed("ssh-batch") {
		cfg.SSH.Batch = sshBatch
	}
	if flags.Changed("ssh-timeout") {
		cfg.SSH.Timeout = sshTimeout
	}
	if flags.Changed("ssh-scan-timeout") {
		cfg.SSH.ScanTimeout = sshScanLimit
	}
}

func (e *env) scanOptions() scanner.Options {
	return scanner.Options{
		Rules:         e.rules,
		ProgressEvery: e.cfg.Scan.ProgressEvery,
		Logger:        e.logger,
	}
}

func (e *env) localBackend() ui.Backend {
	opts := e.scanOptions()
	if e.cfg.Scan.PreCount {
		opts.Counter = scanner.CountDirs
	}
	return ui.LocalBackend(opts, e.cfg.Trash.Dir)
}

// open returns the backend for target and the root to scan. Remote
// connections stay open until Close.
func (e *env) open(ctx context.Context, target scanTarget) (ui.Backend, string, error) {
	if !target.Remote {
		root, err := localRoot(target.LocalPath)
		if err != nil {
			return ui.Backend{}, "", err
		}
		return e.localBackend(), root, nil
	}

	conn, err := remote.Connect(ctx, remote.Config{
		Target:      target.SSHDestination,
		Port:        e.cfg.SSH.Port,
		BatchMode:   e.cfg.SSH.Batch,
		Timeout:     e.cfg.SSH.Timeout,
		ScanTimeout: e.cfg.SSH.ScanTimeout,
	}, nil, e.logger)
	if err != nil {
		return ui.Backend{}, "", err
	}
	e.closers = append(e.closers, conn)

	// The pre-count would double the round trips, so remote scans skip it.
	lister := conn.Lister()
	return ui.Backend{
		Scanner:     scanner.New(lister, e.scanOptions()),
		Lister:      lister,
		Trasher:     conn.Trash(),
		Rules:       e.rules,
		ScanContext: conn.ScanContext,
		Target:      target.SSHDestination,
		Logger:      e.logger,
	}, target.RemotePath, nil
}

// Close releases connections and the log, newest first.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			e.logger.Warn("close failed", "err", err)
		}
	}
	e.closers = nil
}
