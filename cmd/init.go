package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cholinyo/chatbot-comparador/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file interactively",
	Long:  `Runs an interactive wizard and writes the resulting configuration to .comparador.yml in the current directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
