// Package report writes rendered interaction reports and the history panel
// to a terminal or file as text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/ddi-checker/internal/archive"
	"github.com/ddi-checker/internal/service"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses an output format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Write renders a report.
func Write(w io.Writer, model *service.DisplayModel, format Format) error {
	if model == nil {
		return fmt.Errorf("no report to write")
	}
	switch format {
	case FormatJSON:
		return writeJSON(w, model)
	case FormatYAML:
		return writeYAML(w, model)
	default:
		return writeText(w, model)
	}
}

// WriteHistory renders the history panel.
func WriteHistory(w io.Writer, view service.HistoryView, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, view)
	case FormatYAML:
		return writeYAML(w, view)
	default:
		return writeHistoryText(w, view)
	}
}

// WriteRecords lists archived reports. Text output shows one line per record.
func WriteRecords(w io.Writer, records []*archive.Record, total int64, format Format) error {
	if records == nil {
		records = []*archive.Record{}
	}
	switch format {
	case FormatJSON:
		return writeJSON(w, records)
	case FormatYAML:
		return writeYAML(w, records)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No archived reports")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tDRUGS\tLEVEL\tSCORE")
	for _, r := range records {
		drugs := strings.Join(r.Drugs, " + ")
		if r.IsPediatric {
			drugs += " (pediatric)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), drugs, r.Summary.Level,
			service.FormatPercent(r.Summary.CombinedScore, service.SummaryPercentDecimals))
	}
	fmt.Fprintf(tw, "%d of %d reports\n", len(records), total)
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return encoder.Close()
}

func writeText(w io.Writer, model *service.DisplayModel) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "Summary")
	fmt.Fprintf(tw, "  %s\n", model.Summary.Headline)
	fmt.Fprintf(tw, "  Combined score:\t%s\n", model.Summary.CombinedScore)

	for i, pv := range model.Pairs {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "%d. %s\t[%s]\n", i+1, pv.Title(), pv.Pair.Risk)
		fmt.Fprintf(tw, "  ML prob: %s → adjusted: %s\n", pv.ProbPercent, pv.ProbAdjPercent)
		if desc := strings.TrimSpace(pv.Pair.Description); desc != "" {
			fmt.Fprintf(tw, "  %s\n", desc)
		}
		fmt.Fprintf(tw, "  Reasons:\t%s\n", reasonBadges(pv))
		fmt.Fprintf(tw, "  A:\t%s\n", pv.DoseNoteA)
		fmt.Fprintf(tw, "  B:\t%s\n", pv.DoseNoteB)
		if len(pv.Effects) > 0 {
			fmt.Fprintf(tw, "  Effects:\t%s\n", strings.Join(pv.Effects, ", "))
		}
	}

	return tw.Flush()
}

func reasonBadges(pv service.PairView) string {
	parts := make([]string, len(pv.Reasons))
	for i, r := range pv.Reasons {
		parts[i] = fmt.Sprintf("[%s] %s", r.Severity, r.Text)
	}
	return strings.Join(parts, "  ")
}

func writeHistoryText(w io.Writer, view service.HistoryView) error {
	switch {
	case view.Unavailable:
		_, err := fmt.Fprintln(w, "History unavailable")
		return err
	case view.Empty():
		_, err := fmt.Fprintln(w, "No recent checks")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, item := range view.Items {
		fmt.Fprintf(tw, "%s\t%s (%s)\n", item.Label, item.Level, item.CombinedScore)
	}
	return tw.Flush()
}
