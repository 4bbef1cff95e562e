package secscan

import (
	"fmt"

	"github.com/secscan/secscan/internal/audit"
	"github.com/secscan/secscan/internal/config"
	"github.com/secscan/secscan/internal/engine"
	"github.com/secscan/secscan/internal/report"
	"github.com/spf13/cobra"
)

func newBaselineCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines",
	}
	var out string
	update := &cobra.Command{
		Use:   "update [path]",
		Short: "Update baseline from current scan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			root, dir, err := resolvePath(args)
			if err != nil {
				return err
			}
			fc, err := config.Resolve(dir)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			cfg, err := engineConfig(root, fc)
			if err != nil {
				return err
			}
			cfg.Ignore = append(cfg.Ignore, report.DefaultBaselineName, audit.PlainLogName)
			findings, err := engine.Scan(cfg)
			if err != nil {
				return err
			}
			if out == "" {
				out = report.BaselinePath(dir)
			}
			if err := report.SaveBaseline(out, findings); err != nil {
				return err
			}
			fmt.Fprintf(g.stdout, "Baseline updated: %d findings recorded in %s\n", len(findings), out)
			return nil
		},
	}
	update.Flags().StringVar(&out, "out", "", "baseline file (default <path>/"+report.DefaultBaselineName+")")
	cmd.AddCommand(update)
	return cmd
}
