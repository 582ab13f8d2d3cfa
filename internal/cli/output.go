package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/pfrederiksen/almanac-tables/internal/database"
	"github.com/pfrederiksen/almanac-tables/internal/report"
	"github.com/pfrederiksen/almanac-tables/internal/repair"
	"github.com/pfrederiksen/almanac-tables/internal/table"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// WriteOutput writes a command result in the specified format
func WriteOutput(w io.Writer, result interface{}, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result interface{}) error {
	switch r := result.(type) {
	case *ScrapeResult:
		writeScrape(w, r)
	case []CleanedResult:
		writeCleaned(w, r)
	case []ImportResult:
		rows := make([][]string, len(r))
		for i, ir := range r {
			rows[i] = []string{ir.Table, strconv.Itoa(ir.Rows)}
		}
		fmt.Fprintln(w, renderTable([]string{"table", "rows"}, rows))
	case *database.Result:
		writeQuery(w, r)
	case ExportResult:
		fmt.Fprintf(w, "Wrote %s (%s)\n", r.Path, strings.Join(r.Sheets, ", "))
	case *report.Summary:
		writeSummary(w, r)
	case *ParseResult:
		writeParse(w, r)
	default:
		return fmt.Errorf("no text rendering for %T", result)
	}
	return nil
}

// renderTable draws a bordered table with a bold header row
func renderTable(headers []string, rows [][]string) string {
	return ltable.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func writeScrape(w io.Writer, r *ScrapeResult) {
	if len(r.Years) == 0 && len(r.Failed) == 0 {
		fmt.Fprintln(w, "No years to scrape.")
	}

	for _, y := range r.Years {
		parts := make([]string, len(y.Tables))
		for i, span := range y.Tables {
			parts[i] = fmt.Sprintf("%s %d", span.Kind, span.Count)
		}
		fmt.Fprintf(w, "%s: %s\n", y.Year, strings.Join(parts, ", "))
		for _, d := range y.Diagnostics {
			fmt.Fprintf(w, "  skipped %s\n", d)
		}
	}
	for _, f := range r.Failed {
		fmt.Fprintf(w, "%s: FAILED %s\n", f.Year, f.Error)
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped %d years already persisted\n", len(r.Skipped))
	}

	fmt.Fprintf(w, "\nTotal: %d years scraped, %d failed\n", len(r.Years), len(r.Failed))
	if len(r.Cleaned) > 0 {
		fmt.Fprintln(w)
		writeCleaned(w, r.Cleaned)
	}
}

func writeCleaned(w io.Writer, results []CleanedResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "Nothing to clean.")
		return
	}

	rows := make([][]string, len(results))
	for i, c := range results {
		rows[i] = []string{
			c.Kind.String(),
			strconv.Itoa(c.Report.In),
			strconv.Itoa(c.Report.Out),
			strconv.Itoa(c.Report.Repaired),
			strconv.Itoa(c.Report.DroppedTotal()),
			strconv.Itoa(c.Lines.Padded),
		}
	}
	fmt.Fprintln(w, renderTable([]string{"kind", "in", "out", "repaired", "dropped", "padded"}, rows))
}

func writeQuery(w io.Writer, r *database.Result) {
	if len(r.Rows) == 0 {
		fmt.Fprintln(w, "Query executed successfully, but no results found.")
		return
	}

	rows := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			rows[i][j] = formatValue(v)
		}
	}
	fmt.Fprintln(w, renderTable(r.Columns, rows))
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func writeSummary(w io.Writer, s *report.Summary) {
	if s.Empty() {
		fmt.Fprintf(w, "No data for %s.\n", s.Year)
		return
	}

	fmt.Fprintf(w, "%s season\n", s.Year)

	if len(s.Standings) > 0 {
		rows := make([][]string, len(s.Standings))
		for i, r := range s.Standings {
			rows[i] = []string{r.Team, r.Wins.String(), r.Losses.String(), r.WinPct.String(), r.GamesBehind.String()}
		}
		fmt.Fprintln(w, "\nStandings")
		fmt.Fprintln(w, renderTable([]string{"team", "W", "L", "WP", "GB"}, rows))
		fmt.Fprintf(w, "Wins: mean %.1f, median %.1f, std dev %.2f, range %.0f-%.0f\n",
			s.Wins.Mean, s.Wins.Median, s.Wins.StdDev, s.Wins.Min, s.Wins.Max)
		fmt.Fprintf(w, "Win percentage: mean %.3f, std dev %.3f\n",
			s.WinPercentage.Mean, s.WinPercentage.StdDev)
	}

	writeLeaders(w, "Team hitting", s.HitterReview)
	writeLeaders(w, "Team pitching", s.PitcherReview)
	writeFrame(w, "Hitting leaders", s.Hitters)
	writeFrame(w, "Pitching leaders", s.Pitchers)
}

func writeLeaders(w io.Writer, title string, leaders []repair.Leader) {
	if len(leaders) == 0 {
		return
	}
	rows := make([][]string, len(leaders))
	for i, l := range leaders {
		rows[i] = []string{l.Statistic, l.Team, l.Value.String()}
	}
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintln(w, renderTable([]string{"statistic", "team", "value"}, rows))
}

// writeFrame prints a frame without its id and year columns
func writeFrame(w io.Writer, title string, f table.Frame) {
	if len(f.Rows) == 0 {
		return
	}

	var keep []int
	var headers []string
	for i, c := range f.Columns {
		if c == "id" || c == "year" {
			continue
		}
		keep = append(keep, i)
		headers = append(headers, c)
	}

	rows := make([][]string, len(f.Rows))
	for i, row := range f.Rows {
		rows[i] = make([]string, len(keep))
		for j, k := range keep {
			if k < len(row) {
				rows[i][j] = row[k]
			}
		}
	}
	fmt.Fprintf(w, "\n%s\n", title)
	fmt.Fprintln(w, renderTable(headers, rows))
}

func writeParse(w io.Writer, r *ParseResult) {
	if r.Year != "" {
		fmt.Fprintf(w, "Year %s\n", r.Year)
	}
	for _, t := range r.Ordered() {
		fmt.Fprintf(w, "\n%s: %s (%d records)\n", t.Kind, t.Caption, len(t.Records))
		headers := t.AllHeaders()
		rows := make([][]string, len(t.Records))
		for i, rec := range t.Records {
			rows[i] = make([]string, len(headers))
			for j, h := range headers {
				rows[i][j], _ = rec.Get(h)
			}
		}
		fmt.Fprintln(w, renderTable(headers, rows))
	}
	for _, d := range r.Diagnostics {
		fmt.Fprintf(w, "skipped %s\n", d)
	}
}
