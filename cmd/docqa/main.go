package main

import (
	"os"

	"github.com/custodia-labs/docqa-cli/internal/adapters/driving/cli"
)

// version is overridden at build time with
// -ldflags "-X main.version=v1.2.3".
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
