package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "kilimobot",
	Short: "Multi-channel agricultural advisory assistant",
	Long: `Kilimobot answers farmers' questions about crops, livestock, pests,
weather, markets and extension services over WhatsApp, SMS, USSD, voice
and the web, in English and Kiswahili, backed by local agronomy data
and AI generation.`,
}

func Execute() error {
	// Credentials may live in a .env file alongside the config.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".kilimobot.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
