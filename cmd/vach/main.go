// Command vach provides a CLI for packing, inspecting, and unpacking
// .vach archives.
package main

import (
	"os"

	"github.com/zeskeertwee/vach/cmd/vach/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
