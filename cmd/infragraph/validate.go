package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"infragraph/internal/service"
)

var errValidationFailed = errors.New("relationship validation failed")

var validateOpts struct {
	jsonOutput bool
	limit      int
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate relationships in the store",
	Long: `Check every relationship for required fields, a recognized type and a
valid created_at timestamp; check that each relationship has its reverse
with a matching timestamp; check that both endpoints exist as documents
of the declared type; and warn about orphaned references.

Exits with status 1 when any error is found. Warnings do not fail.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("limit") {
			cfg.Validation.ReportLimit = validateOpts.limit
		}
		repo, err := openStore(cfg.Store)
		if err != nil {
			return err
		}
		defer repo.Close()

		svc := service.NewValidationService(repo, validationOptions(cfg), service.NewEventBus())
		result, err := svc.Validate(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if validateOpts.jsonOutput {
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal result: %w", err)
			}
			fmt.Fprintln(out, string(data))
		} else {
			fmt.Fprintln(out, result.Report())
		}

		if !result.Valid {
			return errValidationFailed
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateOpts.jsonOutput, "json", false, "print the result as JSON")
	validateCmd.Flags().IntVar(&validateOpts.limit, "limit", 0, "errors and warnings shown per section")
}
