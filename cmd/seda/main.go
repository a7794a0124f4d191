package main

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/seda/internal/cli"
	"github.com/arthur-debert/seda/pkg/errors"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Printfln("%v", err)
		os.Exit(errors.ExitCode(err))
	}
}
