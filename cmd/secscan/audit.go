package secscan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/secscan/secscan/internal/audit"
	"github.com/secscan/secscan/internal/report"
	"github.com/spf13/cobra"
)

func newAuditCmd(g *globalOptions) *cobra.Command {
	var (
		limit  int
		remove int
	)
	cmd := &cobra.Command{
		Use:   "audit [path]",
		Short: "Show scan history recorded with scan --audit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, dir, err := resolvePath(args)
			if err != nil {
				return err
			}
			l := audit.New(dir)
			if cmd.Flags().Changed("delete") {
				if err := l.DeleteRecord(remove); err != nil {
					return err
				}
				fmt.Fprintf(g.stdout, "Deleted record %d\n", remove)
				return nil
			}
			records, err := l.LoadHistory()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(g.stdout, "No scan history.")
				return nil
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}
			table := tablewriter.NewWriter(g.stdout)
			table.Header("#", "Time", "Findings", "New", "Severity", "Files", "Duration")
			for i, r := range records {
				row := []string{
					strconv.Itoa(i),
					r.Timestamp.Local().Format("2006-01-02 15:04:05"),
					strconv.Itoa(r.TotalFindings),
					strconv.Itoa(r.NewFindings),
					severitySummary(r.SeverityCounts),
					strconv.Itoa(r.FilesScanned),
					r.Duration,
				}
				if err := table.Append(row); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most this many records (0 = all)")
	cmd.Flags().IntVar(&remove, "delete", 0, "delete the record at this index and exit")
	return cmd
}

func severitySummary(counts map[string]int) string {
	var parts []string
	for _, sev := range report.SeverityOrder {
		if n := counts[string(sev)]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", sev, n))
		}
	}
	return strings.Join(parts, " ")
}
