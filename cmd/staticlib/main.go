package main

import (
	"os"

	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	root := buildRootCmd(&logger)
	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("build failed")
		os.Exit(1)
	}
}
