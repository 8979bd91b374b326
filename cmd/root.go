package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cholinyo/chatbot-comparador/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "comparador",
	Short: "Local-government RAG chatbot with side-by-side model comparison",
	Long: `Comparador ingests municipal knowledge — document folders, town-hall
web sites, and open-data APIs — into per-source vector indices, retrieves
the most relevant fragments for a question, and answers it with a choice
of hosted or local language models so their responses can be compared.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
