// Package secscan provides the command-line interface for secscan.
// It configures subcommands (scan, patterns, init, baseline, audit), parses
// flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/secscan/secscan/cmd/secscan"
//	func main() { secscan.Execute() }
package secscan
