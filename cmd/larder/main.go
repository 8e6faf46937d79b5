// Command larder is a command-line client for the recipe backend.
package main

import (
	"os"

	"github.com/mesh-intelligence/larder/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
