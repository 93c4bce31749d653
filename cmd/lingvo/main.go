// Package main is the single-binary entrypoint for the Lingvo backend.
package main

import "github.com/lingvolab/lingvo/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
