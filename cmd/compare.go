package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cholinyo/chatbot-comparador/internal/gateway"
	"github.com/cholinyo/chatbot-comparador/internal/retrieval"
)

var compareCmd = &cobra.Command{
	Use:   "compare [question]",
	Short: "Answer a question with several backends side by side",
	Long: `Retrieves context once, then sends the same prompt to every configured
comparison backend concurrently. Failed backends are reported next to the
successful ones instead of aborting the comparison.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringSlice("backend", nil, "backends to compare as provider:model (default from config)")
	compareCmd.Flags().Int("k", 0, "number of context fragments (default from config)")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := args[0]

	backendFlags, _ := cmd.Flags().GetStringSlice("backend")
	k, _ := cmd.Flags().GetInt("k")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if k, err = resolveK(cfg, k); err != nil {
		return err
	}

	var backends []gateway.BackendDescriptor
	if len(backendFlags) > 0 {
		for _, name := range backendFlags {
			b, err := parseBackend(cfg, name)
			if err != nil {
				return err
			}
			backends = append(backends, b)
		}
	} else if backends, err = compareBackends(cfg); err != nil {
		return err
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
		fmt.Println()
	}

	gw := buildGateway(cfg)
	prompt := retrieval.BuildPrompt(question, results)
	answers := gw.Compare(ctx, prompt, backends)

	for i, answer := range answers {
		fmt.Printf("=== %s (%.2fs) ===\n", answer.ModelUsed, answer.LatencySeconds)
		if answer.Success {
			fmt.Println(answer.Text)
		} else {
			fmt.Printf("FAILED: %s\n", answer.Error)
		}
		if i < len(answers)-1 {
			fmt.Println()
		}
	}
	return nil
}
