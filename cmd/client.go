package cmd

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/lessonbuddy/internal/api"
	"github.com/abhisek/lessonbuddy/internal/app"
	"github.com/abhisek/lessonbuddy/internal/config"
	"github.com/abhisek/lessonbuddy/internal/logging"
)

// runClient launches the terminal client against the configured API.
func runClient(cmd *cobra.Command) error {
	cfg, err := loadClientConfig(cmd)
	if err != nil {
		return err
	}

	// Stdout belongs to the terminal UI, so logs go to a file.
	logFile := cfg.Log.File
	if logFile == "" {
		dir, err := config.StateDir()
		if err != nil {
			return err
		}
		logFile = filepath.Join(dir, "client.log")
	}
	logger, closeLog, err := logging.New(logging.Options{
		Level:     cfg.Log.Level,
		File:      logFile,
		Component: "client",
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLog()

	client := api.New(api.Options{
		BaseURL: cfg.API.URL,
		Timeout: cfg.API.Timeout,
		Logger:  logger,
	})
	logger.Info().Str("api", client.BaseURL()).Msg("client started")

	return app.Run(app.Options{
		Client: client,
		Topics: cfg.Topics,
		Status: apiHost(cfg.API.URL),
		Logger: logger,
	})
}

// loadClientConfig loads configuration and applies the --api-url override.
func loadClientConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cfg, err
	}
	if u, _ := cmd.Flags().GetString("api-url"); u != "" {
		cfg.API.URL = u
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func apiHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Host
}
