package cmd

import (
	"fmt"
	"strings"

	"proof/internal/api"
	"proof/internal/query"

	"github.com/spf13/cobra"
)

var flagTags []string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question about the loaded codebase",
	Long: `Ask one question about the codebase currently loaded on the backend
and print the answer with its cited code snippets. Load a codebase first
with 'proof load'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return fmt.Errorf("question is empty")
		}

		answer, err := newClient().Ask(cmd.Context(), question, normalizeTags(flagTags))
		if err != nil {
			return err
		}

		fmt.Println(answer.Answer)
		if len(answer.Tags) > 0 {
			fmt.Printf("\ntags: %s\n", strings.Join(answer.Tags, ", "))
		}
		printSnippets(answer.Snippets)
		return nil
	},
}

// normalizeTags funnels raw tag input through the same set the ask
// workflow uses, so the CLI and TUI cannot disagree on normalization.
func normalizeTags(raw []string) []string {
	var set query.TagSet
	for _, t := range raw {
		set.Add(t)
	}
	return set.List()
}

func printSnippets(snippets []api.Snippet) {
	for i, s := range snippets {
		fmt.Printf("\n--- snippet %d: %s", i+1, s.File)
		if s.HasLines() {
			fmt.Printf(" (lines %d-%d)", s.StartLine, s.EndLine)
		}
		fmt.Println()
		if s.Description != "" {
			fmt.Println(s.Description)
		}
		fmt.Println(s.Code)
	}
}

func init() {
	askCmd.Flags().StringArrayVar(&flagTags, "tag", nil, "tag the question (repeatable)")
	rootCmd.AddCommand(askCmd)
}
