package cmd

import (
	"os"

	"proof/internal/api"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "proof",
	Short: "Ask questions about a codebase and get answers with cited code",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().String("server", "http://localhost:8000", "Q&A backend base URL")
	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
}

// initConfig layers configuration: flags over PROOF_* environment
// variables over an optional proof.yaml in the working directory or home.
func initConfig() {
	viper.SetConfigName("proof")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}

	viper.SetEnvPrefix("proof")
	viper.AutomaticEnv()

	// The config file is optional; defaults and env cover everything.
	_ = viper.ReadInConfig()
}

func newClient() *api.Client {
	return api.New(viper.GetString("server"))
}
