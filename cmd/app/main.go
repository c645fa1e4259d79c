package main

import (
	"context"
	"fmt"
	"os"

	"FinStudies/internal/cli"
)

func main() {
	if err := cli.New(cli.NewRootConfig()).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
