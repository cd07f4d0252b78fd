package main

import (
	"os"

	"daily-bible-bot/internal/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
