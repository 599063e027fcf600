package main

import (
	"fmt"
	"os"

	"github.com/unlock-community/updelegate/internal/cli"
	"github.com/unlock-community/updelegate/internal/cli/render"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, render.FormatError(err))
		os.Exit(1)
	}
}
