package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/lessonbuddy/internal/config"
	"github.com/abhisek/lessonbuddy/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "lessonbuddy",
	Short: "AI lesson companion for the terminal",
	Long: "LessonBuddy generates lessons on any topic, writes revision notes, " +
		"answers questions and quizzes you on what you read.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClient(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LESSONBUDDY_DB env var)")
	rootCmd.PersistentFlags().String("api-url", "", "Base URL of the lesson API (overrides LESSONBUDDY_API_URL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads configuration using the --config flag.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then server.db from the config, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.Server.DBPath != "" {
		return cfg.Server.DBPath, store.EnsureDir(cfg.Server.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore loads config and opens the database for the read-only
// inspection commands.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, err
	}
	return store.Open(dbPath)
}
