package main

import (
	"fmt"
	"os"

	"todo-sync/internal/cli"
)

func main() {
	root := cli.NewRootCommand(newLoader(getEnvironment()), nil)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
