package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/paperlens/paperlens/cmd/paperlens/commands"
)

func main() {
	// Load environment variables; ignore error if .env doesn't exist
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
