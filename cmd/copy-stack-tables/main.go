// Command copy-stack-tables copies the DynamoDB tables of a Serverless service
// from one stage to another.
//
// Usage:
//
//	copy-stack-tables --source-stage dev --target-stage prod [--overwrite-all-data]
//	copy-stack-tables --after-deploy prod
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-git/go-billy/v5/osfs"

	copytables "github.com/seldebrings/sls-copy-stack-tables"
	"github.com/seldebrings/sls-copy-stack-tables/config"
	copyerrors "github.com/seldebrings/sls-copy-stack-tables/errors"
	"github.com/seldebrings/sls-copy-stack-tables/internal/logging"
	"github.com/seldebrings/sls-copy-stack-tables/manifest"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	cfg := config.Default()

	fs := flag.NewFlagSet("copy-stack-tables", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "copy-stack-tables: %v\n", err)
		return exitUsage
	}

	logger, closeLogs, err := logging.Setup(stderr, logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		SeqURL: cfg.SeqURL,
	})
	if err != nil {
		fmt.Fprintf(stderr, "copy-stack-tables: %v\n", err)
		return exitUsage
	}
	defer closeLogs()

	m, err := manifest.Load(osfs.New(filepath.Dir(cfg.Manifest)), filepath.Base(cfg.Manifest))
	if err != nil {
		logger.ErrorContext(ctx, "failed to load manifest", "path", cfg.Manifest, "error", err)
		return exitUsage
	}
	for _, s := range m.Skipped() {
		logger.WarnContext(ctx, "table not copied", "resource", s.ID, "reason", s.Reason)
	}

	opts := cfg.CopierOptions(m, logger)
	if cfg.Endpoint != "" && os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		opts = append(opts, copytables.WithStaticCredentials("local", "local"))
	}

	copier, err := copytables.New(ctx, opts...)
	if err != nil {
		logger.ErrorContext(ctx, "failed to create copier", "error", err)
		return exitFailed
	}

	req := cfg.Request(m)

	var result *copytables.Result
	if cfg.AfterDeploy != "" {
		result, err = copier.RunAfterDeploy(ctx, cfg.AfterDeploy, req)
	} else {
		result, err = copier.Run(ctx, req)
	}
	if err != nil {
		if copyerrors.IsConfigError(err) || errors.Is(err, copyerrors.ErrInvalidRequest) {
			logger.ErrorContext(ctx, "invalid copy request", "error", err)
			return exitUsage
		}
		return exitFailed
	}

	logger.InfoContext(ctx, "finished", "state", result.State, "run_id", result.RunID)
	return exitOK
}
