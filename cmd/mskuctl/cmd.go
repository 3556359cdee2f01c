package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"msku-service/internal/fileio"
	"msku-service/internal/resolve/engine"
	"msku-service/internal/resolve/ingest"
	"msku-service/internal/resolve/model"
)

const flagMappings = "mappings"

// New builds the root command with all subcommands attached.
func New(logger zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mskuctl {resolve|patterns|lookup}",
		Short:        "Resolve marketplace SKUs to master SKUs from a mapping file",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().String(flagMappings, "", "mapping file (csv, xlsx, xls or json) with sku/msku/marketplace columns")
	_ = cmd.MarkPersistentFlagRequired(flagMappings)

	cmd.AddCommand(newResolveCmd(logger), newPatternsCmd(logger), newLookupCmd(logger))
	return cmd
}

func newResolveCmd(logger zerolog.Logger) *cobra.Command {
	var (
		marketplace string
		cols        ingest.Columns
	)
	cmd := &cobra.Command{
		Use:   "resolve INPUT...",
		Short: "Resolve every row of the input files and print a bulk report per file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadEngine(cmd, logger)
			if err != nil {
				return err
			}
			type fileReport struct {
				File   string           `json:"file"`
				Report model.BulkReport `json:"report"`
			}
			out := make([]fileReport, 0, len(args))
			for _, path := range args {
				rows, err := readFile(path)
				if err != nil {
					return err
				}
				report := eng.BulkProcess(ingest.CandidatesWith(rows, cols, marketplace))
				logger.Info().Str("file", path).Int("matched", report.Matched).Int("notMatched", report.NotMatched).Msg("resolved")
				out = append(out, fileReport{File: path, Report: report})
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&marketplace, "default-marketplace", "Unknown", "marketplace for rows without one")
	cmd.Flags().StringVar(&cols.SKU, "sku-column", "", `SKU column header, "a|b" for alternatives (default: detected)`)
	cmd.Flags().StringVar(&cols.Marketplace, "marketplace-column", "", "marketplace column header (default: detected)")
	return cmd
}

func newPatternsCmd(logger zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "Print the patterns derived from the mapping file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := loadEngine(cmd, logger)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), eng.Patterns())
		},
	}
}

func newLookupCmd(logger zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup SKU MARKETPLACE",
		Short: "Resolve a single SKU",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadEngine(cmd, logger)
			if err != nil {
				return err
			}
			m, err := eng.GetMsku(args[0], args[1])
			if err != nil {
				return fmt.Errorf("%s", engine.Message(err))
			}
			return printJSON(cmd.OutOrStdout(), m)
		},
	}
}

func loadEngine(cmd *cobra.Command, logger zerolog.Logger) (*engine.Engine, error) {
	path, err := cmd.Flags().GetString(flagMappings)
	if err != nil {
		return nil, err
	}
	rows, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return engine.New(logger, ingest.Mappings(rows))
}

func readFile(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := fileio.ReadAnyMaps(f, path, 1)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
