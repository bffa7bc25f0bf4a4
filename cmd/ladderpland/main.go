// Package main is the entry point for the ladder planner daemon.
package main

import (
	"flag"
	"fmt"
	"os"

	"ladderplan/internal/app"
	"ladderplan/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	// Optional .env for local overrides (listen address etc.)
	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := app.New(cfg).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ladderplan exited with error: %v\n", err)
		os.Exit(1)
	}
}
