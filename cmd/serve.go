package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/cholinyo/chatbot-comparador/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the retrieve_fragments and ask tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fuser, indices, err := buildFuser(cfg)
		if err != nil {
			return err
		}
		backend, err := defaultBackend(cfg)
		if err != nil {
			return err
		}

		total := 0
		for _, idx := range indices {
			total += idx.Len()
		}
		if total == 0 {
			fmt.Fprintln(os.Stderr, "Warning: indices are empty. Run `comparador ingest` first.")
		}

		mcpserver.Version = Version
		fmt.Fprintf(os.Stderr, "comparador MCP server started on stdio (fragments=%d)\n", total)

		srv := mcpserver.NewServer(fuser, buildGateway(cfg), cfg.RAG.K, backend)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
