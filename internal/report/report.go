package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gobenford/domain/benford"
	"gobenford/internal/errors"
	"gobenford/ports"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/olekukonko/tablewriter"
)

// Format selects how a report is rendered
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat parses a report format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatMarkdown, FormatHTML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "":
		return FormatText, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown report format: %s", s))
}

const (
	matchVerdict    = "Observed distribution matches expected distribution"
	mismatchVerdict = "Observed distribution does not match expected."
)

// Render writes the report in the given format
func Render(w io.Writer, r *benford.Report, format Format) error {
	switch format {
	case FormatText, "":
		return renderText(w, r)
	case FormatJSON:
		return writeJSON(w, jsonReport{Report: r, Passed: r.Passed()})
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r))
		return err
	case FormatHTML:
		_, err := w.Write(toHTML(Markdown(r), "Benford analysis"))
		return err
	}
	return errors.InvalidInput(fmt.Sprintf("unknown report format: %s", format))
}

type jsonReport struct {
	*benford.Report
	Passed bool `json:"passed"`
}

// renderText prints the console layout: counts, per-digit probabilities, the
// chi-square statistic to three significant digits and the verdict.
func renderText(w io.Writer, r *benford.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Source: %s\n", displaySource(r.Source))
	if r.RunID != "" {
		fmt.Fprintf(&b, "Run: %s\n", r.RunID)
	}
	if r.Profile != nil {
		for _, warning := range r.Profile.Warnings {
			fmt.Fprintf(&b, "⚠️  %s\n", warning)
		}
	}

	for _, s := range r.Sections {
		dist := s.Distribution
		chi := s.ChiSquare

		fmt.Fprintf(&b, "\nObserved counts = %s\n", formatInts(chi.Observed))
		fmt.Fprintf(&b, "Expected counts = %s \n\n", formatInts(chi.Expected))

		fmt.Fprintf(&b, "%s Digit Probabilities\n", positionTitle(dist.Position))
		for i, digit := range dist.Digits {
			fmt.Fprintf(&b, "%d: observed: %.3f expected: %.3f\n", digit, dist.Percentages[i]/100, s.Reference[i]/100)
		}
		if dist.Unbucketed > 0 || dist.Dropped > 0 {
			fmt.Fprintf(&b, "Samples: %d counted, %d without a digit bucket, %d dropped (zero policy %s)\n",
				dist.Total, dist.Unbucketed, dist.Dropped, dist.ZeroPolicy)
		}

		fmt.Fprintf(&b, "\nChi Squared Test Statistic = %s\n", strconv.FormatFloat(chi.Statistic, 'g', 3, 64))
		fmt.Fprintf(&b, "Critical value at a P-value of %s is %.2f.\n", strconv.FormatFloat(chi.Significance, 'g', -1, 64), chi.CriticalValue)
		fmt.Fprintf(&b, "MAD = %.4f (%s)\n", s.Conformity.MAD, s.Conformity.Level)
		if chi.Passed {
			b.WriteString(matchVerdict + "\n")
		} else {
			b.WriteString(mismatchVerdict + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Markdown returns the report as a markdown document with one table per digit position
func Markdown(r *benford.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Benford analysis: %s\n\n", displaySource(r.Source))
	if r.RunID != "" {
		fmt.Fprintf(&b, "- **Run:** `%s`\n", r.RunID)
	}
	if !r.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "- **Created:** %s\n", r.CreatedAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "- **Verdict:** %s\n", verdict(r.Passed()))
	if p := r.Profile; p != nil {
		fmt.Fprintf(&b, "- **Magnitudes:** %s to %s (%.1f orders, median %s)\n",
			strconv.FormatFloat(p.Min, 'g', -1, 64), strconv.FormatFloat(p.Max, 'g', -1, 64), p.OrdersOfMagnitude,
			strconv.FormatFloat(p.Median, 'g', -1, 64))
		for _, warning := range p.Warnings {
			fmt.Fprintf(&b, "- **Warning:** %s\n", warning)
		}
	}

	for _, s := range r.Sections {
		dist := s.Distribution
		chi := s.ChiSquare

		fmt.Fprintf(&b, "\n## %s digit\n\n", positionTitle(dist.Position))
		b.WriteString("| Digit | Observed | Expected | Observed % | Benford % |\n")
		b.WriteString("|------:|---------:|---------:|-----------:|----------:|\n")
		for i, digit := range dist.Digits {
			fmt.Fprintf(&b, "| %d | %d | %d | %.1f | %.1f |\n",
				digit, chi.Observed[i], chi.Expected[i], dist.Percentages[i], s.Reference[i])
		}

		fmt.Fprintf(&b, "\n- **Samples:** %d (zero policy %s, %d without a digit bucket, %d dropped)\n",
			dist.Total, dist.ZeroPolicy, dist.Unbucketed, dist.Dropped)
		fmt.Fprintf(&b, "- **Chi-square:** %.3f (critical %.2f at α=%s, df %d, p=%.4f)\n",
			chi.Statistic, chi.CriticalValue, strconv.FormatFloat(chi.Significance, 'g', -1, 64), chi.DegreesOfFreedom, chi.PValue)
		fmt.Fprintf(&b, "- **MAD:** %.4f (%s)\n", s.Conformity.MAD, s.Conformity.Level)
		fmt.Fprintf(&b, "- **Result:** %s\n", verdict(chi.Passed))
	}

	return b.String()
}

// RenderRuns writes stored run summaries in the given format
func RenderRuns(w io.Writer, runs []ports.RunSummary, format Format) error {
	switch format {
	case FormatJSON:
		if runs == nil {
			runs = []ports.RunSummary{}
		}
		return writeJSON(w, runs)
	case FormatMarkdown, FormatHTML:
		var b strings.Builder
		b.WriteString("# Stored runs\n\n")
		b.WriteString("| Run | Source | Positions | Samples | Result | Created |\n")
		b.WriteString("|-----|--------|-----------|--------:|--------|---------|\n")
		for _, run := range runs {
			fmt.Fprintf(&b, "| `%s` | %s | %s | %d | %s | %s |\n",
				run.ID, displaySource(run.Source), run.Positions, run.Total, verdict(run.Passed), run.CreatedAt.UTC().Format(time.RFC3339))
		}
		if format == FormatHTML {
			_, err := w.Write(toHTML(b.String(), "Stored runs"))
			return err
		}
		_, err := io.WriteString(w, b.String())
		return err
	case FormatText, "":
		if len(runs) == 0 {
			_, err := io.WriteString(w, "No stored runs\n")
			return err
		}
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Run", "Created", "Result", "Positions", "Samples", "Source"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		for _, run := range runs {
			status := "PASS"
			if !run.Passed {
				status = "FAIL"
			}
			table.Append([]string{
				run.ID.String(), run.CreatedAt.UTC().Format(time.RFC3339), status,
				run.Positions, strconv.Itoa(run.Total), displaySource(run.Source),
			})
		}
		table.Render()
		return nil
	}
	return errors.InvalidInput(fmt.Sprintf("unknown report format: %s", format))
}

func toHTML(md, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: title,
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode report")
	}
	return nil
}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func positionTitle(p benford.Position) string {
	if p == benford.PositionSecond {
		return "Second"
	}
	return "First"
}

func verdict(passed bool) string {
	if passed {
		return "✅ matches Benford's law"
	}
	return "❌ does not match Benford's law"
}

func displaySource(source string) string {
	if source == "" {
		return "(inline samples)"
	}
	return source
}
