// Package main provides the entry point for the plating CLI tool.
package main

import "github.com/provide-io/plating/cmd/plating/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
