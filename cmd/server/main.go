package main

import (
	"fmt"
	"os"

	"github.com/tiagotdas/calendario-fiscal/internal/cli"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "calendario:", err)
		os.Exit(1)
	}
}
