// Package main is the entry point for the cloudkeeper application.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/pkovacs/cloudkeeper/internal/checksum"
	"github.com/pkovacs/cloudkeeper/internal/config"
	"github.com/pkovacs/cloudkeeper/internal/engine"
	"github.com/pkovacs/cloudkeeper/internal/expand"
	"github.com/pkovacs/cloudkeeper/internal/tui"
	"github.com/pkovacs/cloudkeeper/pkg/errors"
)

const appVersion = "1.2.0"

// expandCmd materializes cloud-folder placeholders under a tree.
type expandCmd struct {
	Root    string        `arg:"positional,required" help:"Tree to expand placeholders under"`
	Exclude string        `arg:"-x,--exclude" help:"Regexp of placeholder paths to leave collapsed"`
	Threads int           `arg:"-t,--threads" help:"Concurrent placeholder openers (default: CPU count)"`
	Timeout time.Duration `arg:"--timeout" default:"10m" help:"Per-placeholder expansion timeout"`
}

// checksumCmd prints content digests for one file.
type checksumCmd struct {
	File string `arg:"positional,required" help:"File to digest"`
}

type appArgs struct {
	config.Config

	Expand   *expandCmd   `arg:"subcommand:expand" help:"Materialize cloud folder placeholders"`
	Checksum *checksumCmd `arg:"subcommand:checksum" help:"Print MD5, SHA256 and SHA512 digests of a file"`
}

// Description implements the go-arg description hook
func (appArgs) Description() string {
	return "cloudkeeper backs up a source tree into a cloud-synced folder,\n" +
		"copying only the files the cloud does not already hold."
}

// Version implements the go-arg version hook
func (appArgs) Version() string {
	return "cloudkeeper " + appVersion
}

func main() {
	var args appArgs

	arg.MustParse(&args)

	logger, closeLogs, err := setupLogger(args.Verbose, args.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	exitCode := run(ctx, &args, logger)

	stop()
	closeLogs()
	os.Exit(exitCode)
}

// run dispatches to the selected subcommand and maps its result to an exit
// code. Fatal errors are enriched with suggestions before printing.
func run(ctx context.Context, args *appArgs, logger *slog.Logger) int {
	var err error

	exitCode := 0

	switch {
	case args.Expand != nil:
		err = runExpand(ctx, args.Expand, logger)
	case args.Checksum != nil:
		err = checksum.Report(args.Checksum.File, os.Stdout)
	default:
		exitCode, err = runReconcile(ctx, &args.Config, logger)
	}

	if err != nil {
		reportFatal(err)

		return 1
	}

	return exitCode
}

// runReconcile drives the default backup-reconcile run, full screen when
// stdout is a terminal, plain event lines otherwise.
func runReconcile(ctx context.Context, cfg *config.Config, logger *slog.Logger) (int, error) {
	cfg.ApplyDefaults()

	eng := engine.NewEngine(cfg, logger)

	go func() {
		<-ctx.Done()
		eng.Cancel()
	}()

	var (
		summary *engine.Summary
		err     error
	)

	if !cfg.Plain && term.IsTerminal(int(os.Stdout.Fd())) {
		summary, err = tui.Run(eng)
	} else {
		eng.SetEventEmitter(&plainEmitter{verbose: cfg.Verbose})
		summary, err = eng.Run(ctx)
	}

	if err != nil {
		return 1, err
	}

	if summary == nil || !summary.Complete() {
		return 1, nil
	}

	return 0, nil
}

func runExpand(ctx context.Context, cmd *expandCmd, logger *slog.Logger) error {
	expander, err := expand.New(expand.Options{
		Root:           cmd.Root,
		ExcludePattern: cmd.Exclude,
		Workers:        cmd.Threads,
		ItemTimeout:    cmd.Timeout,
	}, logger)
	if err != nil {
		return err
	}

	result, err := expander.Run(ctx)
	if result != nil {
		logger.Info("expansion finished",
			"passes", result.Passes,
			"expanded", result.Expanded,
			"excluded", result.Excluded,
			"timed_out", result.TimedOut)
	}

	return err
}

func reportFatal(err error) {
	enriched := errors.NewEnricher().Enrich(err, "")

	fmt.Fprintf(os.Stderr, "Error: %v\n", enriched)

	if suggestions := errors.FormatSuggestions(enriched); suggestions != "" {
		fmt.Fprintln(os.Stderr, suggestions)
	}
}
