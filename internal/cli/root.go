package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

// NewRootCmd builds the command tree. Each call returns a fresh tree so
// flags never leak between invocations.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "tasks",
		Version: Version,
		Short:   "Task board with AI-suggested subtasks",
		Long: `tasks serves a small task board over HTTP and can break any task
into a handful of short, verb-first subtasks using a text generation model.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("server", envOr("TASKS_SERVER_URL", "http://localhost:8080"),
		"base URL of a running tasks server")

	root.AddCommand(newServeCmd())
	root.AddCommand(newTasksCmd())
	root.AddCommand(newSuggestCmd())
	return root
}

// Execute runs the root command. This is called by main.main().
func Execute() error {
	return NewRootCmd().Execute()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func serverURL(cmd *cobra.Command) string {
	url, _ := cmd.Flags().GetString("server")
	return url
}
