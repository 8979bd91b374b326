package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cholinyo/chatbot-comparador/internal/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP API server",
	Long:  `Starts the JSON HTTP API (retrieve, chat, compare, status) for browser frontends and integrations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		allowAll, _ := cmd.Flags().GetBool("allow-all-origins")
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if addr == "" {
			addr = cfg.Server.Addr
		}

		fuser, indices, err := buildFuser(cfg)
		if err != nil {
			return err
		}
		backend, err := defaultBackend(cfg)
		if err != nil {
			return err
		}
		backends, err := compareBackends(cfg)
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Addr:            addr,
			AllowAll:        allowAll,
			DefaultK:        cfg.RAG.K,
			DefaultBackend:  backend,
			CompareBackends: backends,
		}, fuser, buildGateway(cfg), indices)

		return srv.Start()
	},
}

func init() {
	serverCmd.Flags().String("addr", "", "listen address (default from config)")
	serverCmd.Flags().Bool("allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serverCmd)
}
