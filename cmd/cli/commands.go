package main

import (
	"context"
	"fmt"
	"io"

	"gobenford/app"
	"gobenford/domain/benford"
	"gobenford/internal/errors"
	"gobenford/internal/report"
	"gobenford/ports"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type analyzeOptions struct {
	position     string
	zeroPolicy   string
	significance float64
	normalize    bool
	column       string
	sheet        string
	jsonPath     string
	noHeader     bool
	format       string
	store        bool
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Analyze the digit distribution of one or more sample files",
		Long: `Count the leading digits of integer samples and run a chi-square
goodness-of-fit test against Benford's law.

Files may be newline-delimited text, CSV, XLSX or JSON; "-" reads standard input.
Several files are analyzed concurrently and reported in argument order.

Example: gobenford analyze ledger.csv --column amount --position both --format markdown`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.position, "position", "", "Digit position: first, second or both (default BENFORD_POSITION)")
	cmd.Flags().StringVar(&opts.zeroPolicy, "zero-policy", "", "Leading-zero samples: include or exclude (default depends on position)")
	cmd.Flags().Float64Var(&opts.significance, "significance", 0, "Significance level of the chi-square test (default BENFORD_SIGNIFICANCE)")
	cmd.Flags().BoolVar(&opts.normalize, "normalize", false, "Strip signs and leading zeros before counting")
	cmd.Flags().StringVar(&opts.column, "column", "", "CSV/XLSX column name or 0-based index")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "XLSX sheet name (default first sheet)")
	cmd.Flags().StringVar(&opts.jsonPath, "json-path", "", "gjson path selecting an array in JSON input")
	cmd.Flags().BoolVar(&opts.noHeader, "no-header", false, "Tabular input has no header row")
	cmd.Flags().StringVar(&opts.format, "format", "", "Report format: text, json, markdown or html (default REPORT_FORMAT)")
	cmd.Flags().BoolVar(&opts.store, "store", false, "Persist the run in the run store")

	return cmd
}

func runAnalyze(cmd *cobra.Command, paths []string, opts analyzeOptions) error {
	flags := cmd.Flags()
	if flags.Changed("significance") && (opts.significance <= 0 || opts.significance >= 1) {
		return errors.InvalidInput(fmt.Sprintf("--significance must be between 0 and 1 exclusive, got %g", opts.significance))
	}

	ctx := cmd.Context()
	deps, err := newContainer(ctx, opts.store)
	if err != nil {
		return err
	}
	defer deps.Shutdown(context.Background())

	req := app.NewAnalysisRequest(deps.Config.Analysis)
	if flags.Changed("position") {
		req.Position = opts.position
	}
	if flags.Changed("zero-policy") {
		req.ZeroPolicy = opts.zeroPolicy
	}
	if flags.Changed("significance") {
		req.Significance = opts.significance
	}
	if flags.Changed("normalize") {
		req.Normalize = opts.normalize
	}
	req.Store = opts.store

	format, err := resolveFormat(opts.format, deps.Config.Report.Format)
	if err != nil {
		return err
	}

	loadOpts := ports.LoadOptions{
		Column:   opts.column,
		Sheet:    opts.sheet,
		JSONPath: opts.jsonPath,
		NoHeader: opts.noHeader,
	}

	reports := make([]*benford.Report, len(paths))
	failures := make([]error, len(paths))

	var g errgroup.Group
	g.SetLimit(deps.Config.Batch.Concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			reports[i], failures[i] = deps.AnalysisService.AnalyzeFile(ctx, path, loadOpts, req)
			return nil
		})
	}
	_ = g.Wait()

	out := cmd.OutOrStdout()
	failed := 0
	for i, path := range paths {
		if failures[i] != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "❌ %s: %v\n", path, failures[i])
			continue
		}
		if len(paths) > 1 && format == report.FormatText && i > 0 {
			fmt.Fprintln(out)
		}
		if err := report.Render(out, reports[i], format); err != nil {
			return err
		}
		if opts.store {
			fmt.Fprintf(cmd.ErrOrStderr(), "💾 Stored run %s\n", reports[i].RunID)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(paths))
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	var limit, offset int
	var format string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored analysis runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newContainer(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer deps.Shutdown(context.Background())

			f, err := resolveFormat(format, deps.Config.Report.Format)
			if err != nil {
				return err
			}
			runs, err := deps.AnalysisService.ListRuns(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			return report.RenderRuns(cmd.OutOrStdout(), runs, f)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of runs to skip")
	cmd.Flags().StringVar(&format, "format", "", "Output format: text, json, markdown or html")

	return cmd
}

func newShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print a stored analysis run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newContainer(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer deps.Shutdown(context.Background())

			f, err := resolveFormat(format, deps.Config.Report.Format)
			if err != nil {
				return err
			}
			run, err := deps.AnalysisService.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), run, f)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Report format: text, json, markdown or html")

	return cmd
}

func newReferenceCmd() *cobra.Command {
	var position string
	var significance float64

	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Print the Benford reference distribution and critical value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			positions, err := app.ParsePositions(position)
			if err != nil {
				return err
			}
			for i, p := range positions {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				if err := printReference(cmd.OutOrStdout(), p, significance); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&position, "position", "first", "Digit position: first, second or both")
	cmd.Flags().Float64Var(&significance, "significance", benford.DefaultSignificance, "Significance level for the critical value")

	return cmd
}

func printReference(w io.Writer, p benford.Position, significance float64) error {
	ref, err := benford.Reference(p)
	if err != nil {
		return err
	}
	critical, err := benford.CriticalValue(p, significance)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "📐 Benford %s digit reference\n", p)
	for i, digit := range p.Digits() {
		fmt.Fprintf(w, "%d: %5.2f%%\n", digit, ref[i])
	}
	fmt.Fprintf(w, "Critical value at a P-value of %g (df %d) is %.2f.\n", significance, p.DegreesOfFreedom(), critical)
	return nil
}

// resolveFormat prefers the flag value over the configured default
func resolveFormat(flag, configured string) (report.Format, error) {
	if flag != "" {
		return report.ParseFormat(flag)
	}
	return report.ParseFormat(configured)
}
