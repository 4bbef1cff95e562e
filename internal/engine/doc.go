// Package engine contains the core scanning logic for secscan. It discovers
// target files, applies the rule catalog to each one (sequentially or across
// a bounded worker pool), and returns a ScanResult. This package is internal;
// external consumers should use the stable facade in pkg/core.
package engine
