package secscan

import (
	"fmt"
	"strings"

	"github.com/secscan/secscan/internal/config"
	"github.com/secscan/secscan/internal/detectors"
	"github.com/secscan/secscan/internal/types"
	"github.com/spf13/cobra"
)

func newPatternsCmd(g *globalOptions) *cobra.Command {
	var category, severity string
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List detection patterns",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fc, err := config.Resolve(".")
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			rules, err := detectors.Load(fc.Rules())
			if err != nil {
				return err
			}
			cats, err := parseCategory(category)
			if err != nil {
				return err
			}
			if len(cats) > 0 {
				rules = detectors.ByCategory(rules, cats[0])
			}
			if severity != "" {
				sev := types.Severity(strings.ToLower(severity))
				if !sev.Valid() {
					return fmt.Errorf("invalid severity %q", severity)
				}
				rules = detectors.BySeverity(rules, sev)
			}

			w := g.stdout
			fmt.Fprintf(w, "\nFound %d patterns:\n\n", len(rules))
			for _, r := range rules {
				fmt.Fprintf(w, "• [%s] %s\n", strings.ToUpper(string(r.Severity)), r.ID)
				fmt.Fprintf(w, "  %s\n", r.Description)
				fmt.Fprintf(w, "  Category: %s\n\n", r.Category)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "all", "filter by category: secret|sast|all")
	cmd.Flags().StringVarP(&severity, "severity", "s", "", "filter by severity: critical|high|medium|low")
	return cmd
}
