package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/secscan/secscan/internal/detectors"
	"github.com/secscan/secscan/internal/types"
	"github.com/wandb/parallel"
)

const (
	// DefaultWorkers is used when Config.Workers is not positive.
	DefaultWorkers = 4
	// DefaultMaxBytes caps the size of a file read during discovery.
	DefaultMaxBytes int64 = 1 << 20

	// parallelMinFiles is the file count above which work is spread across
	// workers. Smaller trees are not worth the fan-out.
	parallelMinFiles = 10
)

// Config controls scanning behavior including scope, rules and parallelism.
// The engine never modifies it.
type Config struct {
	Root   string
	Ignore []string

	CustomRules []detectors.Rule
	Enable      string
	Disable     string
	Categories  []types.Category

	EnableEntropy    bool
	EntropyThreshold float64
	EntropyMode      string

	Parallel bool
	Workers  int

	MaxBytes        int64
	DefaultExcludes bool
	MatchTimeout    time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig(root string) Config {
	return Config{
		Root:             root,
		EntropyThreshold: detectors.DefaultEntropyThreshold,
		EntropyMode:      EntropyModeLine,
		Parallel:         true,
		Workers:          DefaultWorkers,
		MaxBytes:         DefaultMaxBytes,
		DefaultExcludes:  true,
	}
}

func (c Config) detectOptions() DetectOptions {
	return DetectOptions{
		EntropyEnabled:   c.EnableEntropy,
		EntropyThreshold: c.EntropyThreshold,
		EntropyMode:      c.EntropyMode,
		MatchTimeout:     c.MatchTimeout,
	}
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return DefaultWorkers
	}
	return c.Workers
}

// Rules resolves the rule set for cfg: built-ins plus custom rules, narrowed
// by the enable/disable lists and the category filter.
func Rules(cfg Config) ([]detectors.Rule, error) {
	rules, err := detectors.Load(cfg.CustomRules)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	rules = detectors.Select(rules, cfg.Enable, cfg.Disable)
	if len(cfg.Categories) > 0 {
		var keep []detectors.Rule
		for _, r := range rules {
			if slices.Contains(cfg.Categories, r.Category) {
				keep = append(keep, r)
			}
		}
		rules = keep
	}
	return rules, nil
}

// Scan runs a scan and returns only findings (without stats).
func Scan(cfg Config) ([]types.Finding, error) {
	res, err := ScanWithStats(cfg)
	if err != nil {
		return nil, err
	}
	return res.Findings, nil
}

// ScanWithStats discovers files under cfg.Root and runs every rule over them.
// Files that cannot be read or scanned are listed in Errors; the scan itself
// only fails when the rule set or ignore configuration is unusable, or a
// worker dies.
func ScanWithStats(cfg Config) (types.ScanResult, error) {
	started := time.Now()

	rules, err := Rules(cfg)
	if err != nil {
		return types.ScanResult{}, err
	}
	files, readErrs, err := Discover(cfg)
	if err != nil {
		return types.ScanResult{}, err
	}

	res, err := ScanFiles(files, rules, cfg)
	if err != nil {
		return types.ScanResult{}, err
	}
	errs := make([]string, 0, len(readErrs)+len(res.Errors))
	res.Errors = append(append(errs, readErrs...), res.Errors...)
	res.DurationMillis = time.Since(started).Milliseconds()
	return res, nil
}

// ScanFiles runs rules over already-loaded files. It chooses the parallel
// path when cfg.Parallel is set and there are more than ten files.
func ScanFiles(files []types.FileContent, rules []detectors.Rule, cfg Config) (types.ScanResult, error) {
	started := time.Now()
	opts := cfg.detectOptions()

	var (
		findings []types.Finding
		errs     []string
		err      error
	)
	if cfg.Parallel && len(files) > parallelMinFiles {
		findings, errs, err = scanParallel(files, rules, opts, cfg.workers())
		if err != nil {
			return types.ScanResult{}, err
		}
	} else {
		findings, errs = scanChunk(NewDetector(rules, opts), files)
	}

	if errs == nil {
		errs = []string{}
	}
	if findings == nil {
		findings = []types.Finding{}
	}
	res := types.ScanResult{
		Findings:       findings,
		FilesScanned:   len(files),
		DurationMillis: time.Since(started).Milliseconds(),
		Errors:         errs,
	}
	log.Debug().Int("files", res.FilesScanned).Int("findings", len(res.Findings)).Int("errors", len(res.Errors)).Msg("scan finished")
	return res, nil
}

// scanChunk scans files in order with one Detector. Findings from a file
// whose detection partly failed are kept.
func scanChunk(d *Detector, files []types.FileContent) ([]types.Finding, []string) {
	var (
		out  []types.Finding
		errs []string
	)
	for _, f := range files {
		fs, err := d.Detect(f)
		out = append(out, fs...)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Error scanning %s: %v", f.Path, err))
		}
	}
	return out, errs
}

// newDetector is replaced in tests to fail a worker outside Detect.
var newDetector = NewDetector

type chunkResult struct {
	index    int
	findings []types.Finding
	errors   []string
}

// scanParallel splits files into contiguous chunks of ceil(n/workers) and
// scans each chunk on its own goroutine with its own Detector. Output is
// reassembled in chunk order, so it matches the sequential path.
func scanParallel(files []types.FileContent, rules []detectors.Rule, opts DetectOptions, workers int) ([]types.Finding, []string, error) {
	chunkSize := (len(files) + workers - 1) / workers
	group := parallel.Collect[chunkResult](parallel.Limited(context.Background(), workers))

	chunks := 0
	for start := 0; start < len(files); start += chunkSize {
		chunk := files[start:min(start+chunkSize, len(files))]
		index := chunks
		chunks++
		group.Go(func(ctx context.Context) (chunkResult, error) {
			fs, errs := scanChunk(newDetector(rules, opts), chunk)
			return chunkResult{index: index, findings: fs, errors: errs}, nil
		})
	}
	log.Debug().Int("files", len(files)).Int("chunks", chunks).Int("workers", workers).Msg("dispatched scan chunks")

	results, err := func() (rs []chunkResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("scan worker panicked: %v", r)
			}
		}()
		return group.Wait()
	}()
	if err != nil {
		log.Error().Err(err).Msg("parallel scan failed")
		return nil, nil, err
	}

	slices.SortFunc(results, func(a, b chunkResult) int { return a.index - b.index })
	var (
		findings []types.Finding
		errs     []string
	)
	for _, r := range results {
		findings = append(findings, r.findings...)
		errs = append(errs, r.errors...)
	}
	return findings, errs, nil
}
