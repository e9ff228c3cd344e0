package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/andreyxaxa/ubl-sender/config"
	"github.com/andreyxaxa/ubl-sender/internal/app"
	"github.com/joho/godotenv"
)

func main() {
	envFile := flag.String("env", ".env", "optional dotenv file loaded before the environment is parsed")
	flag.Parse()

	// Config
	if err := loadEnv(*envFile); err != nil {
		log.Fatalf("config error: %s", err)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("config error: %s", err)
	}

	// Run
	app.Run(cfg)
}

// loadEnv never overrides variables already set in the process environment.
func loadEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return godotenv.Load(path)
}
