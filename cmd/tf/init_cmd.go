package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/timefiles/timefiles/internal/config"
)

var initFormatFlag string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPathFlag
		if initFormatFlag == "toml" {
			path = swapExt(path, ".toml")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if initFormatFlag == "toml" {
			if err := config.WriteDefaultTOML(path); err != nil {
				return err
			}
		} else {
			if err := config.WriteDefaultYAML(path); err != nil {
				return err
			}
		}
		fmt.Println(passStyle.Render("wrote " + path))
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initFormatFlag, "format", "yaml", "yaml or toml")
}

func swapExt(path, ext string) string {
	return path[:len(path)-len(filepath.Ext(path))] + ext
}
