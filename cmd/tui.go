package cmd

import (
	"proof/internal/tui"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func runTUI() error {
	return tui.Run(tui.Config{
		ServerURL: viper.GetString("server"),
	})
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
