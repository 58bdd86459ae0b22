package main

import (
	"fmt"
	"os"

	"notes/internal/cli"
	"notes/internal/config"
)

func main() {
	// Load configuration from defaults, .env and the environment
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Create storage factory based on environment
	factory := config.NewStorageFactory(config.GetEnvironment())

	root := cli.NewRootCommand(cfg, factory.CreateStorage, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
