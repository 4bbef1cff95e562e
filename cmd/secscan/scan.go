package secscan

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/secscan/secscan/internal/audit"
	"github.com/secscan/secscan/internal/config"
	"github.com/secscan/secscan/internal/engine"
	"github.com/secscan/secscan/internal/report"
	"github.com/secscan/secscan/internal/types"
	"github.com/spf13/cobra"
)

type scanOptions struct {
	output           string
	file             string
	entropy          bool
	entropyThreshold float64
	entropyMode      string
	ignore           []string
	noParallel       bool
	workers          int
	enable           string
	disable          string
	category         string
	failOn           string
	baseline         string
	audit            bool
	maxBytes         int64
	matchTimeout     time.Duration
	defaultExcludes  bool
}

func newScanCmd(g *globalOptions) *cobra.Command {
	o := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a directory for security issues",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, g, o, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "terminal", "output format: terminal|json|sarif")
	f.StringVarP(&o.file, "file", "f", "", "write output to file instead of stdout")
	f.BoolVar(&o.entropy, "entropy", false, "enable entropy-based detection")
	f.Float64Var(&o.entropyThreshold, "entropy-threshold", 4.5, "entropy threshold in bits per character")
	f.StringVar(&o.entropyMode, "entropy-mode", engine.EntropyModeLine, "entropy mode: line|context")
	f.StringArrayVar(&o.ignore, "ignore", nil, "additional ignore glob (repeatable)")
	f.BoolVar(&o.noParallel, "no-parallel", false, "disable parallel scanning")
	f.IntVar(&o.workers, "workers", engine.DefaultWorkers, "number of scan workers")
	f.StringVar(&o.enable, "enable", "", "only run these rules (comma-separated IDs)")
	f.StringVar(&o.disable, "disable", "", "skip these rules (comma-separated IDs)")
	f.StringVar(&o.category, "category", "all", "rule category: secret|sast|all")
	f.StringVar(&o.failOn, "fail-on", "low", "exit 1 at or above: low|medium|high|critical|none")
	f.StringVar(&o.baseline, "baseline", "", "baseline file (default <path>/"+report.DefaultBaselineName+")")
	f.BoolVar(&o.audit, "audit", false, "append a summary of this scan to the audit log")
	f.Int64Var(&o.maxBytes, "max-bytes", engine.DefaultMaxBytes, "skip files larger than this")
	f.DurationVar(&o.matchTimeout, "match-timeout", 0, "per-rule regex time limit (0 = none)")
	f.BoolVar(&o.defaultExcludes, "default-excludes", true, "apply built-in exclude list (node_modules, dist, lock files, etc.)")
	return cmd
}

// applyFlags layers explicitly set flags over the file config.
func applyFlags(cmd *cobra.Command, o *scanOptions, fc *config.FileConfig) {
	changed := cmd.Flags().Changed
	if changed("output") {
		fc.OutputFormat = &o.output
	}
	if changed("entropy") {
		fc.EnableEntropy = &o.entropy
	}
	if changed("entropy-threshold") {
		fc.EntropyThreshold = &o.entropyThreshold
	}
	if changed("entropy-mode") {
		fc.EntropyMode = &o.entropyMode
	}
	fc.Ignore = append(fc.Ignore, o.ignore...)
	if changed("no-parallel") {
		p := !o.noParallel
		fc.Parallel = &p
	}
	if changed("workers") {
		fc.Workers = &o.workers
	}
	if changed("enable") {
		fc.Enable = &o.enable
	}
	if changed("disable") {
		fc.Disable = &o.disable
	}
	if changed("fail-on") {
		fc.FailOn = &o.failOn
	}
	if changed("max-bytes") {
		fc.MaxBytes = &o.maxBytes
	}
	if changed("match-timeout") {
		d := o.matchTimeout.String()
		fc.MatchTimeout = &d
	}
	if changed("default-excludes") {
		fc.DefaultExcludes = &o.defaultExcludes
	}
}

func runScan(cmd *cobra.Command, g *globalOptions, o *scanOptions, args []string) error {
	root, dir, err := resolvePath(args)
	if err != nil {
		return err
	}
	fc, err := config.Resolve(dir)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	applyFlags(cmd, o, &fc)

	format := val(fc.OutputFormat, "terminal")
	switch format {
	case "terminal", "json", "sarif":
	default:
		return fmt.Errorf("invalid output format %q (want terminal, json or sarif)", format)
	}
	failOn := val(fc.FailOn, "low")
	if !validFailOn(failOn) {
		return fmt.Errorf("invalid --fail-on %q", failOn)
	}
	cfg, err := engineConfig(root, fc)
	if err != nil {
		return err
	}
	if cfg.Categories, err = parseCategory(o.category); err != nil {
		return err
	}
	baselinePath := o.baseline
	if baselinePath == "" {
		baselinePath = report.BaselinePath(dir)
	}
	// never scan our own bookkeeping files
	cfg.Ignore = append(cfg.Ignore, report.DefaultBaselineName, audit.PlainLogName)

	log.Debug().Str("root", root).Str("format", format).Bool("parallel", cfg.Parallel).Int("workers", cfg.Workers).Msg("starting scan")
	res, err := engine.ScanWithStats(cfg)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}

	base, err := report.LoadBaseline(baselinePath)
	if err != nil {
		return fmt.Errorf("baseline %s: %w", baselinePath, err)
	}
	all := res.Findings
	res.Findings = report.FilterNewFindings(all, base)
	if n := len(all) - len(res.Findings); n > 0 {
		log.Info().Int("suppressed", n).Str("baseline", baselinePath).Msg("baselined findings hidden")
	}

	if o.audit {
		rec := audit.CreateScanRecord(root, types.ScanResult{
			Findings:       all,
			FilesScanned:   res.FilesScanned,
			DurationMillis: res.DurationMillis,
			Errors:         res.Errors,
		}, res.Findings, baselinePath)
		if err := audit.New(dir).LogScan(rec); err != nil {
			log.Warn().Err(err).Msg("could not write audit log")
		}
	}

	if err := writeOutput(g, format, o.file, res); err != nil {
		return err
	}
	if report.ShouldFail(res.Findings, failOn) {
		return exitCodeError{code: exitFindings}
	}
	return nil
}

func writeOutput(g *globalOptions, format, file string, res types.ScanResult) error {
	var w io.Writer = g.stdout
	color := g.color(g.stdout)
	if file != "" {
		f, err := os.Create(file)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
		color = false
	}
	var err error
	switch format {
	case "json":
		err = report.WriteJSON(w, res, true)
	case "sarif":
		err = report.WriteSARIF(w, res.Findings, version)
	default:
		err = report.PrintTerminal(w, res, report.PrintOptions{NoColor: !color})
	}
	if err != nil {
		return fmt.Errorf("write %s output: %w", format, err)
	}
	if file != "" {
		fmt.Fprintf(g.stdout, "Results written to %s\n", file)
	}
	return nil
}
