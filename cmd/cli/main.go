package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/metric-atlas/pkg/runtime/terminal"
	"github.com/de-tools/metric-atlas/pkg/services/decoder"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Decoders: decoder.NewDefaultRegistry(),
		Output:   os.Stdout,
	})

	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
