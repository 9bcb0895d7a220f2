package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/riskdesk/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize riskdesk configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the LLM provider, database and server settings, and writes them to the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
