package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cholinyo/chatbot-comparador/internal/retrieval"
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Answer a question with retrieved context and one model backend",
	Args:  cobra.ExactArgs(1),
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().String("backend", "", "override the backend as provider:model, e.g. openai:gpt-4o")
	chatCmd.Flags().Int("k", 0, "number of context fragments (default from config)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := args[0]

	backendFlag, _ := cmd.Flags().GetString("backend")
	k, _ := cmd.Flags().GetInt("k")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if k, err = resolveK(cfg, k); err != nil {
		return err
	}

	backend, err := defaultBackend(cfg)
	if err != nil {
		return err
	}
	if backendFlag != "" {
		if backend, err = parseBackend(cfg, backendFlag); err != nil {
			return err
		}
	}

	fuser, _, err := buildFuser(cfg)
	if err != nil {
		return err
	}

	results, err := fuser.Retrieve(ctx, question, k, nil, nil)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Println(retrieval.NoContextNotice)
	}

	gw := buildGateway(cfg)
	prompt := retrieval.BuildPrompt(question, results)
	answer := gw.Generate(ctx, prompt, backend)

	if !answer.Success {
		return fmt.Errorf("backend %s failed after %.2fs: %s",
			answer.ModelUsed, answer.LatencySeconds, answer.Error)
	}

	fmt.Println(answer.Text)
	if verbose {
		fmt.Printf("\n(model: %s, latency: %.2fs, fragments: %d)\n",
			answer.ModelUsed, answer.LatencySeconds, len(results))
	}
	return nil
}
