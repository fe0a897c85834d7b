package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"infragraph/internal/codec"
	"infragraph/internal/config"
	"infragraph/internal/inference"
	"infragraph/internal/repository"
	"infragraph/internal/repository/file"
	"infragraph/internal/repository/sqlite"
	"infragraph/internal/validate"
)

var globalOpts struct {
	configPath string
	storePath  string
	format     string
	verbose    bool
}

var rootCmd = &cobra.Command{
	Use:   "infragraph",
	Short: "Infer and validate infrastructure relationships",
	Long: `infragraph post-processes the document store written by the
infrastructure collectors. It links DNS records to reverse proxies by
domain, follows proxy backends to the services behind them, and checks
that every relationship is well formed and paired with its reverse.

Configuration is read from $INFRAGRAPH_CONFIG, ./infragraph.yaml or
~/.config/infragraph/config.yaml. Flags override file values.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalOpts.configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.storePath, "store", "s", "", "document store path")
	rootCmd.PersistentFlags().StringVar(&globalOpts.format, "format", "", "store format: json, yaml or sqlite")
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false, "log every individual match")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if globalOpts.configPath != "" {
		cfg, path, err = config.LoadFromPath(globalOpts.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if path != "" {
		log.Printf("Loaded config from %s", path)
	}

	applyFlagOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Inference.Verbose {
		for _, line := range strings.Split(cfg.Summary(), "\n") {
			log.Print(line)
		}
	}
	return cfg, nil
}

// applyFlagOverrides copies explicitly set global flags into cfg
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store.Path = globalOpts.storePath
		if !flags.Changed("format") {
			cfg.Store.Format = ""
		}
	}
	if flags.Changed("format") {
		cfg.Store.Format = globalOpts.format
	}
	if flags.Changed("verbose") {
		cfg.Inference.Verbose = globalOpts.verbose
	}
}

// storeFormat resolves the configured format, falling back to the extension
func storeFormat(cfg config.StoreConfig) string {
	if cfg.Format != "" {
		return strings.ToLower(cfg.Format)
	}
	return codec.FormatFromPath(cfg.Path)
}

// openStore opens the configured store backend
func openStore(cfg config.StoreConfig) (repository.Repository, error) {
	switch format := storeFormat(cfg); format {
	case "sqlite":
		repo, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return repo, nil
	default:
		return file.New(cfg.Path, format)
	}
}

func inferenceOptions(cfg *config.Config) inference.Options {
	return inference.Options{
		LoopbackHosts:   cfg.Inference.LoopbackHosts,
		DefaultProtocol: cfg.Inference.DefaultBackendProtocol,
		Verbose:         cfg.Inference.Verbose,
	}
}

func validationOptions(cfg *config.Config) validate.Options {
	return validate.Options{
		ReportLimit:  cfg.Validation.ReportLimit,
		OrphanSample: cfg.Validation.OrphanSample,
	}
}
