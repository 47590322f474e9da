package main

import (
	"github.com/joho/godotenv"

	"docqa/internal/cli"
)

func main() {
	// Best effort: API keys may come from a .env file or the environment.
	godotenv.Load()

	cli.Execute()
}
