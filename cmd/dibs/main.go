package main

import (
	"fmt"
	"os"

	"github.com/dibs-cli/dibs/internal/cli"
	"github.com/dibs-cli/dibs/pkg/style"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, style.RenderError(err))
		os.Exit(1)
	}
}
