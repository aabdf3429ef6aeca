package cmd

import (
	"fmt"

	"proof/internal/api"
	"proof/internal/health"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend, database and LLM health",
	RunE: func(cmd *cobra.Command, args []string) error {
		report := health.Check(cmd.Context(), newClient())

		printComponent("backend ", report.Backend)
		printComponent("database", report.Database)
		printComponent("llm     ", report.LLM)

		if report.CodebaseLoaded {
			fmt.Printf("codebase: %d files loaded\n", report.FileCount)
		} else {
			fmt.Println("codebase: none loaded")
		}

		if !report.OK() {
			return fmt.Errorf("one or more subsystems unhealthy")
		}
		return nil
	},
}

func printComponent(name string, c api.ComponentStatus) {
	mark := "✗"
	if c.Status == api.StatusOK {
		mark = "✓"
	}
	fmt.Printf("%s %s  %s\n", mark, name, c.Message)
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
