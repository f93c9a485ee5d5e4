package main

import (
	"os"

	"github.com/corewp/corewp/internal/cli"
	"github.com/corewp/corewp/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps failure to exit code 1. Error
// messages are printed by the CLI layer itself.
func run() int {
	root := cli.NewRootCmd(version.GetVersion())
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
