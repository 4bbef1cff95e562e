package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/secscan/secscan/internal/types"
)

// PrintOptions controls terminal rendering.
type PrintOptions struct {
	NoColor bool
}

const maxPathWidth = 40

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	alertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	severityFill = map[types.Severity]lipgloss.Style{
		types.SevCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9")).Bold(true),
		types.SevHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		types.SevMed:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		types.SevLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
)

type painter struct{ plain bool }

func (p painter) paint(s lipgloss.Style, text string) string {
	if p.plain {
		return text
	}
	return s.Render(text)
}

func (p painter) badge(sev types.Severity) string {
	label := strings.ToUpper(string(sev))
	st, ok := severityFill[sev]
	if !ok {
		return label
	}
	return p.paint(st, label)
}

// PrintTerminal renders a human-readable report: a title, a severity
// summary, a findings table ordered critical first and a footer with scan
// statistics and any warnings.
func PrintTerminal(w io.Writer, res types.ScanResult, opts PrintOptions) error {
	p := painter{plain: opts.NoColor}
	fmt.Fprintln(w)
	fmt.Fprintln(w, p.paint(titleStyle, "Security Scan Results"))
	fmt.Fprintln(w, p.paint(dimStyle, strings.Repeat("─", 50)))
	fmt.Fprintln(w)

	if len(res.Findings) == 0 {
		fmt.Fprintln(w, p.paint(okStyle, "✓ No security issues found!"))
	} else {
		fmt.Fprintln(w, p.paint(alertStyle, fmt.Sprintf("✖ Found %d security issues:", len(res.Findings))))
		counts := CountBySeverity(res.Findings)
		for _, sev := range SeverityOrder {
			if n := counts[sev]; n > 0 {
				fmt.Fprintf(w, "  • %d %s\n", n, p.badge(sev))
			}
		}
		fmt.Fprintln(w)
		if err := writeTable(w, p, SortBySeverity(res.Findings)); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, p.paint(dimStyle, fmt.Sprintf("Files scanned: %d", res.FilesScanned)))
	fmt.Fprintln(w, p.paint(dimStyle, fmt.Sprintf("Duration: %dms", res.DurationMillis)))
	if len(res.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, p.paint(warnStyle, fmt.Sprintf("⚠ Warnings: %d", len(res.Errors))))
		for _, e := range res.Errors {
			fmt.Fprintln(w, p.paint(dimStyle, "  • "+e))
		}
	}
	return nil
}

func writeTable(w io.Writer, p painter, findings []types.Finding) error {
	table := tablewriter.NewWriter(w)
	table.Header("Severity", "Type", "File", "Line", "Description")
	for _, f := range findings {
		row := []string{
			p.badge(f.Severity),
			f.RuleType,
			truncatePath(f.File, maxPathWidth),
			strconv.Itoa(f.Line),
			f.Description,
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// truncatePath shortens long paths to their last two segments, or to the
// tail of the final segment when that is still too long.
func truncatePath(p string, max int) string {
	if utf8.RuneCountInString(p) <= max {
		return p
	}
	parts := strings.Split(p, "/")
	if len(parts) >= 2 {
		short := ".../" + strings.Join(parts[len(parts)-2:], "/")
		if utf8.RuneCountInString(short) <= max {
			return short
		}
	}
	r := []rune(p)
	return "..." + string(r[len(r)-(max-3):])
}
