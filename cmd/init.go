package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilimobot/kilimobot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file interactively",
	Long:  `Walks through the configuration (port, languages, AI backends, cache, channels) and writes it to the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgFile); err == nil {
			return fmt.Errorf("%s already exists, edit it directly or remove it first", cfgFile)
		}

		cfg, err := config.RunWizard()
		if err != nil {
			return fmt.Errorf("running setup wizard: %w", err)
		}
		if err := cfg.Save(cfgFile); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Printf("Wrote %s. Start the service with `kilimobot serve`.\n", cfgFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
