package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"proof/internal/api"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load <archive.zip | repository-url>",
	Short: "Load a codebase from a ZIP archive or a public repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := strings.TrimSpace(args[0])
		client := newClient()

		var (
			res api.IngestResult
			err error
		)
		if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
			res, err = client.LoadRepository(cmd.Context(), source)
		} else {
			if !strings.HasSuffix(strings.ToLower(source), ".zip") {
				return fmt.Errorf("only .zip archives are supported")
			}
			var f *os.File
			f, err = os.Open(source)
			if err != nil {
				return err
			}
			defer f.Close()
			res, err = client.UploadArchive(cmd.Context(), filepath.Base(source), f)
		}
		if err != nil {
			return err
		}

		fmt.Printf("%d files indexed\n", res.FileCount)
		for _, path := range res.Files {
			fmt.Println("  " + path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
