package main

import (
	"fmt"
	"os"

	"shelf-dcs/cmd/shelf-dcs/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
