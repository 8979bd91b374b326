package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cholinyo/chatbot-comparador/internal/retrieval"
	"github.com/cholinyo/chatbot-comparador/internal/vectorstore"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Retrieve the most relevant fragments for a question",
	Long:  `Embeds the question, searches every per-source vector index, and prints the fused ranking without calling any language model.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().Int("k", 0, "number of fragments to return (default from config)")
	queryCmd.Flags().StringSlice("category", nil, "restrict to source categories: document, web, api, database")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := args[0]

	k, _ := cmd.Flags().GetInt("k")
	categoryNames, _ := cmd.Flags().GetStringSlice("category")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if k, err = resolveK(cfg, k); err != nil {
		return err
	}

	categories, err := parseCategories(categoryNames)
	if err != nil {
		return err
	}

	fuser, _, err := buildFuser(cfg)
	if err != nil {
		return err
	}

	results, err := fuser.Retrieve(ctx, question, k, categories, nil)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matching fragments found. Run `comparador ingest` first.")
		return nil
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	printResults(results)
	return nil
}

func printResults(results []retrieval.Result) {
	fmt.Printf("Found %d fragment(s):\n\n", len(results))
	for i, r := range results {
		origin := r.Provenance[vectorstore.ProvOrigin]
		if origin == "" {
			origin = r.Provenance[vectorstore.ProvArtifact]
		}
		fmt.Printf("  %d. [%s] d=%.4f %s\n", i+1, r.Category, r.Distance, origin)
		fmt.Printf("     %s\n\n", truncate(r.Text, 160))
	}
}

func parseCategories(names []string) ([]vectorstore.SourceCategory, error) {
	var categories []vectorstore.SourceCategory
	for _, name := range names {
		category := vectorstore.SourceCategory(name)
		if !category.Valid() {
			return nil, fmt.Errorf("unknown category %q", name)
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
