package main

import (
	"flag"
	"log"
	"os"

	"SignalRelay/internal/di"
	"SignalRelay/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Missing credentials or chat identifiers are a configuration
	// defect: exit non-zero immediately, no restart.
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s source=%s target=%s", cfg.Environment, cfg.Telegram.SourceChatID, cfg.Telegram.TargetChatID)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
