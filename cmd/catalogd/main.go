// Command catalogd runs the content-addressed catalog service.
package main

import (
	"os"

	"github.com/kilupskalvis/catalogd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
