package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"infragraph/internal/config"
	"infragraph/internal/service"
	"infragraph/internal/watcher"
)

var watchOpts struct {
	debounce time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run processing whenever the store is rewritten",
	Long: `Watch the document store and run a full post-processing pass each
time the collectors finish rewriting it. Writes made by the pass itself
are recognised and do not trigger another run.

Only file stores (JSON or YAML) can be watched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if storeFormat(cfg.Store) == "sqlite" {
			return fmt.Errorf("cannot watch sqlite store %s: use a JSON or YAML store", cfg.Store.Path)
		}
		if cmd.Flags().Changed("debounce") {
			cfg.Watch.Debounce = config.Duration(watchOpts.debounce)
		}

		repo, err := openStore(cfg.Store)
		if err != nil {
			return err
		}
		defer repo.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		processor := service.NewPostProcessor(repo, inferenceOptions(cfg), service.NewEventBus())
		run := func() {
			if _, err := processor.Process(ctx); err != nil {
				log.Printf("Post-processing failed: %v", err)
			}
		}

		// Bring the store up to date before waiting for changes
		run()

		w := watcher.New(cfg.Store.Path, run).WithDebounce(cfg.Watch.Debounce.Duration())
		if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("watch %s: %w", cfg.Store.Path, err)
		}
		log.Println("Watcher stopped")
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchOpts.debounce, "debounce", 0, "quiet period before a run")
}
