// Package main is the single-binary entrypoint for roster, the
// assignment and learning engine.
package main

import "github.com/rosterhq/roster/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
