// Package core provides a small, stable facade over secscan's internal engine
// for external integrations. It re-exports a narrow API surface so other
// tools can depend on a stable import path without reaching into internal
// packages.
//
// Example:
//
//	cfg := core.DefaultConfig(".")
//	res, err := core.Scan(cfg)
//	if err != nil { /* handle */ }
//	_ = core.MarshalResult(os.Stdout, res)
package core
