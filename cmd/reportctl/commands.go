package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"property_report/pkg/core/invest"
	"property_report/pkg/core/render"
	"property_report/pkg/core/report"
	"property_report/pkg/core/schema"
)

func newMetricsCmd() *cobra.Command {
	var (
		format    string
		overrides string
		tolerance float64
	)
	cmd := &cobra.Command{
		Use:   "metrics [report.json]",
		Short: "Recompute metrics, sensitivity and discrepancies for a report",
		Long: `Parses a report (use - for stdin), applies optional overrides and prints the
locally computed metrics.

Example:
  reportctl metrics saved.json --overrides '{"interestRatePct": 7}' --format md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var o invest.Overrides
			if overrides != "" {
				if err := json.Unmarshal([]byte(overrides), &o); err != nil {
					return fmt.Errorf("invalid --overrides: %w", err)
				}
				if err := o.Validate(); err != nil {
					return fmt.Errorf("invalid --overrides: %w", err)
				}
			}
			s, err := loadSchema()
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			rep, m, err := report.ComputeRaw(s, raw, o, tolerance)
			if err != nil {
				return err
			}
			log().Debug("metrics computed",
				zap.Int("discrepancies", len(m.Discrepancies)),
				zap.Int("warnings", len(m.Warnings)))

			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(m)
			case "md", "markdown":
				_, err := fmt.Fprint(out, render.Markdown(&report.GenerateResponse{
					Report:        rep,
					Metrics:       m.Metrics,
					Sensitivity:   m.Sensitivity,
					Discrepancies: m.Discrepancies,
					Warnings:      m.Warnings,
				}))
				return err
			default:
				return fmt.Errorf("unknown format %q (want json or md)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or md")
	cmd.Flags().StringVar(&overrides, "overrides", "", "JSON object of assumption overrides (whole percents)")
	cmd.Flags().Float64Var(&tolerance, "tolerance", invest.DefaultTolerance, "Relative difference at which reported totals are flagged")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [report.json]",
		Short: "Validate a report document against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema()
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			if err := s.Validate(raw); err != nil {
				for _, v := range schema.Violations(err) {
					fmt.Fprintln(cmd.OutOrStdout(), "✗", v)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ report matches the schema")
			return nil
		},
	}
}

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the report schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "describe",
		Short: "List every field with its type and bounds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tTYPE\tREQUIRED\tNULLABLE\tBOUNDS")
			for _, f := range s.Describe() {
				fmt.Fprintf(w, "%s\t%s\t%t\t%t\t%s\n", f.Path, strings.Join(f.Types, "|"), f.Required, f.Nullable, bounds(f))
			}
			return w.Flush()
		},
	}, &cobra.Command{
		Use:   "check",
		Short: "Check the schema against the structured-output contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema()
			if err != nil {
				return err
			}
			if err := s.CheckContract(); err != nil {
				for _, v := range schema.ContractViolations(err) {
					fmt.Fprintln(cmd.OutOrStdout(), "✗", v.String())
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ schema honors the contract")
			return nil
		},
	})
	return cmd
}

func bounds(f schema.Field) string {
	var parts []string
	if f.Minimum != nil {
		parts = append(parts, fmt.Sprintf("min=%g", *f.Minimum))
	}
	if f.Maximum != nil {
		parts = append(parts, fmt.Sprintf("max=%g", *f.Maximum))
	}
	if f.MinItems != nil {
		parts = append(parts, fmt.Sprintf("minItems=%d", *f.MinItems))
	}
	if len(f.Enum) > 0 {
		parts = append(parts, "enum="+strings.Join(f.Enum, ","))
	}
	return strings.Join(parts, " ")
}
