package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var refactorCmd = &cobra.Command{
	Use:   "refactor <topic>",
	Short: "Get refactor suggestions for the loaded codebase",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.TrimSpace(strings.Join(args, " "))
		if topic == "" {
			return fmt.Errorf("topic is empty")
		}

		res, err := newClient().Refactor(cmd.Context(), topic)
		if err != nil {
			return err
		}

		fmt.Println(res.Suggestions)
		printSnippets(res.Snippets)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refactorCmd)
}
