package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"infragraph/internal/config"
	"infragraph/internal/repository"
	"infragraph/internal/repository/file"
	"infragraph/internal/repository/sqlite"
)

var convertOpts struct {
	format string
}

var convertCmd = &cobra.Command{
	Use:   "convert <destination>",
	Short: "Copy the store into another backend",
	Long: `Copy every document, relationship and metadata entry of the store into
a new store at <destination>. The destination format is taken from
--to, or from its extension (.json, .yaml, .db).

Example:
  infragraph convert --store rag_output/rag_data.json rag_output/rag_data.db`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		src, err := openStore(cfg.Store)
		if err != nil {
			return err
		}
		defer src.Close()

		dst, err := createStore(config.StoreConfig{Path: args[0], Format: convertOpts.format})
		if err != nil {
			return err
		}
		defer dst.Close()

		snap, err := src.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load store: %w", err)
		}
		if err := dst.Save(cmd.Context(), snap); err != nil {
			return fmt.Errorf("failed to save store: %w", err)
		}

		log.Printf("Copied %d documents and %d relationships from %s to %s",
			len(snap.Documents), len(snap.Relationships), src.Location(), dst.Location())
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertOpts.format, "to", "", "destination format: json, yaml or sqlite")
}

// createStore opens a store for writing, creating a sqlite database when
// it does not exist yet
func createStore(cfg config.StoreConfig) (repository.Repository, error) {
	switch format := storeFormat(cfg); format {
	case "sqlite":
		repo, err := sqlite.Create(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("create sqlite store: %w", err)
		}
		return repo, nil
	default:
		return file.New(cfg.Path, format)
	}
}
