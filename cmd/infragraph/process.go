package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"infragraph/internal/service"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Infer relationships and write them back to the store",
	Long: `Run one batch post-processing pass:

  1. Link DNS records to proxy hosts serving the same domain
  2. Resolve proxy backends (host:port) to containers and their services
  3. Add both directions of every inferred relationship
  4. Record a post-processing summary in the store metadata

Re-running over an unchanged store adds no relationships.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		repo, err := openStore(cfg.Store)
		if err != nil {
			return err
		}
		defer repo.Close()

		processor := service.NewPostProcessor(repo, inferenceOptions(cfg), service.NewEventBus())
		report, err := processor.Process(cmd.Context())
		if err != nil {
			return fmt.Errorf("post-processing failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Run %s: %d relationships created (%d total)\n",
			report.RunID, report.RelationshipsCreated, report.TotalRelationships)
		return nil
	},
}
