package main

import (
	"log"
	"os"

	"jobd/cmd"
	"jobd/internal/config"
	"jobd/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatal("Failed to create data directory:", err)
	}

	st := store.New(cfg.DataDir)

	cmd.Execute(st, cfg)
}
