// Fstop-sync pulls photo and collection metadata from the configured
// provider and reconciles it into the local database.
//
// It exits zero on completion, even when individual items were skipped or
// failed; only configuration errors are fatal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-envconfig"
	"github.com/sethvargo/go-retry"
	_ "golang.org/x/crypto/x509roots/fallback"
	_ "modernc.org/sqlite"

	"github.com/anjohnson/fstop/internal/enrich"
	"github.com/anjohnson/fstop/internal/migrations"
	"github.com/anjohnson/fstop/internal/provider/unsplash"
	"github.com/anjohnson/fstop/internal/sqlite"
	syncer "github.com/anjohnson/fstop/internal/sync"
	"github.com/anjohnson/fstop/logger"
)

type config struct {
	AccessKey string `env:"UNSPLASH_ACCESS_KEY, required"`
	Username  string `env:"UNSPLASH_USERNAME, default=joaohfrodrigues"`
	Database  string `env:"DATABASE, default=photos.db"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`
}

type options struct {
	full     bool
	detail   bool
	strict   bool
	maxItems int
}

func main() {
	var (
		full     = flag.Bool("full", false, "reprocess every item regardless of stored state")
		detail   = flag.Bool("detail", false, "fetch the full detail payload for every listed photo")
		strict   = flag.Bool("strict", false, "abort a stream on the first malformed record instead of skipping it")
		maxItems = flag.Int("max-photos", 0, "maximum items per source, 0 for all (testing)")
		test     = flag.Bool("test", false, "test mode: sync only 5 items per source")
	)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	logger.Setup(os.Stderr, cfg.LoggerFormat)

	opts := options{
		full:     *full,
		detail:   *detail,
		strict:   *strict,
		maxItems: *maxItems,
	}
	if *test {
		opts.maxItems = 5
	}

	if err := run(ctx, cfg, opts); err != nil {
		slog.Error("error running sync", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, opts options) error {
	dbx, err := sqlx.Open("sqlite", fmt.Sprintf("%s?_txlock=immediate&_journal_mode=WAL&_busy_timeout=5000", cfg.Database))
	if err != nil {
		return fmt.Errorf("error opening database: %s", err)
	}
	defer dbx.Close()

	// Wait out a previous run still holding the write lock.
	if err := retry.Fibonacci(ctx, 1*time.Second, func(ctx context.Context) error {
		if err := dbx.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("error connecting to database: %s", err)
	}

	// Migrate, always
	if err := migrations.Run(dbx); err != nil {
		return fmt.Errorf("error running migrations: %s", err)
	}

	client := unsplash.New(unsplash.Config{
		AccessKey: cfg.AccessKey,
		Username:  cfg.Username,
		Detail:    opts.detail,
		Strict:    opts.strict,
		MaxItems:  opts.maxItems,
	})

	engine := syncer.New(
		client,
		enrich.New(client, opts.full),
		sqlite.New(dbx),
		syncer.Config{Username: cfg.Username, Full: opts.full},
	)

	summary, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running sync: %s", err)
	}

	slog.Info("run summary",
		"collections_synced", summary.CollectionsSynced,
		"photos_synced", summary.PhotosSynced,
		"photos_skipped", summary.PhotosSkipped,
		"photos_failed", summary.PhotosFailed,
	)

	return nil
}
