package secscan

import (
	"fmt"
	"path/filepath"

	"github.com/secscan/secscan/internal/config"
	"github.com/spf13/cobra"
)

func newInitCmd(g *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			name := ".secscanrc.json"
			switch format {
			case "json":
			case "yaml", "yml":
				name = ".secscan.yml"
			default:
				return fmt.Errorf("unknown config format %q (want json or yaml)", format)
			}
			p := filepath.Join(dir, name)
			if err := config.WriteDefault(p, format); err != nil {
				return err
			}
			fmt.Fprintf(g.stdout, "Created %s\n", p)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "config file format: json|yaml")
	return cmd
}
