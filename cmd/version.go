package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/lessonbuddy/internal/api"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the lesson API in use",
	Long: "Print the client version and the lesson API it talks to. With --check " +
		"the API's /healthz endpoint is queried and its report printed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadClientConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "lessonbuddy", version)
		fmt.Fprintln(out, "api:", cfg.API.URL)

		check, _ := cmd.Flags().GetBool("check")
		if !check {
			return nil
		}
		client := api.New(api.Options{BaseURL: cfg.API.URL, Timeout: cfg.API.Timeout})
		h, err := client.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("health check: %w", err)
		}
		model := h.Model
		if !h.ModelConfigured {
			model = "not configured"
		}
		fmt.Fprintln(out, "status:", h.Status)
		fmt.Fprintln(out, "model:", model)
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("check", false, "Query the API's /healthz endpoint")
}
