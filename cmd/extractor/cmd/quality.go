package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/quality"
)

var qualityCmd = &cobra.Command{
	Use:   "quality [fields.json]",
	Short: "Score extracted field data against a document template",
	Long: `Read a JSON object of field name to value pairs and print a
quality report for the given document type.

Example:
  extractor quality fields.json --type rent_roll`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuality,
}

func init() {
	qualityCmd.Flags().String("type", "", "document type to score against")
	rootCmd.AddCommand(qualityCmd)
}

func runQuality(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input file provided")
	}
	docType, _ := cmd.Flags().GetString("type")
	if docType == "" {
		return errors.New("--type is required")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("parse fields file: %w", err)
	}

	report := quality.NewScorer(nil).CalculateQualityScore(fields, docType, quality.Metadata{})
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
