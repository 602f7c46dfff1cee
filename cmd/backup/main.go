// Command backup maintains the database dumps kept in a Supabase storage
// bucket.
//
//	backup list   -b bucket [-p path]
//	backup upload -b bucket -f file [-d dest]
//	backup prune  -b bucket [-k 7] [-d 7] [-p path] [--dry-run]
//
// Every command also accepts --config, --url, --key and --log-level.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"moneylens/internal/backup"
	"moneylens/internal/logger"
	"moneylens/internal/resilience"
	"moneylens/internal/storage"
)

const usage = "usage: backup <list|upload|prune> [flags]"

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "backup:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return errors.New(usage)
	}
	command, args := args[0], args[1:]

	flags := pflag.NewFlagSet("backup "+command, pflag.ContinueOnError)
	configPath := flags.String("config", "", "optional TOML config file")
	flags.String("url", "", "Supabase project URL (overrides SUPABASE_URL)")
	flags.String("key", "", "Supabase service key (overrides SUPABASE_KEY)")
	flags.String("log-level", "", "log level (overrides LOG_LEVEL)")
	bucket := flags.StringP("bucket", "b", "", "storage bucket")

	var (
		prefix string
		file   string
		dest   string
		keep   int
		days   int
		dryRun bool
	)
	switch command {
	case "list":
		flags.StringVarP(&prefix, "path", "p", "", "path inside the bucket")
	case "upload":
		flags.StringVarP(&file, "file", "f", "", "local file to upload")
		flags.StringVarP(&dest, "dest", "d", "", "destination path (defaults to the file name)")
	case "prune":
		flags.StringVarP(&prefix, "path", "p", "", "path inside the bucket")
		flags.IntVarP(&keep, "keep", "k", 7, "number of newest files to keep")
		flags.IntVarP(&days, "days", "d", 7, "delete files older than this many days")
		flags.BoolVar(&dryRun, "dry-run", false, "list the files that would be deleted")
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}

	if err := flags.Parse(args); err != nil {
		return err
	}
	if *bucket == "" {
		return errors.New("--bucket is required")
	}
	if command == "upload" && file == "" {
		return errors.New("--file is required")
	}

	cfg, err := backup.LoadConfig(*configPath, flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := storage.NewClient(nil, cfg.URL, cfg.Key, resilience.DefaultConfig(), log)
	runner := backup.NewRunner(client, os.Stdout)

	switch command {
	case "list":
		return runner.List(ctx, *bucket, prefix)
	case "upload":
		return runner.Upload(ctx, *bucket, file, dest)
	default:
		return runner.Prune(ctx, *bucket, backup.PruneOptions{
			Prefix: prefix,
			Keep:   keep,
			Days:   days,
			DryRun: dryRun,
		})
	}
}
