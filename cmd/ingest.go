package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cholinyo/chatbot-comparador/internal/config"
	"github.com/cholinyo/chatbot-comparador/internal/ingest"
	"github.com/cholinyo/chatbot-comparador/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [documents|web|api]...",
	Short: "Ingest the configured sources into the vector indices",
	Long: `Collects text from the configured document folders, web seeds, and
REST APIs, fragments and embeds it, and updates the per-source vector
indices. Artifacts whose checksum has not changed since the last run are
skipped. With no arguments every configured source type is ingested.`,
	Args: cobra.ArbitraryArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	_, byCategory, err := openIndices(cfg)
	if err != nil {
		return err
	}
	man, err := openManifest(cfg)
	if err != nil {
		return err
	}
	defer man.Close()

	pipeline := &ingest.Pipeline{
		Embedder:    embedder,
		Manifest:    man,
		Indices:     byCategory,
		MaxChars:    cfg.RAG.MaxChars,
		Overlap:     cfg.RAG.Overlap,
		Concurrency: cfg.MaxConcurrency,
		Reporter:    progress.NewReporter(),
		Logger:      log.New(os.Stderr, "", log.LstdFlags),
	}

	ingestors, err := selectIngestors(cfg, args)
	if err != nil {
		return err
	}

	for _, ing := range ingestors {
		stats, err := pipeline.Run(ctx, ing)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d collected, %d ingested, %d skipped, %d failed, %d fragments (%s)\n",
			ing.Category(), stats.Collected, stats.Ingested, stats.Skipped,
			stats.Failed, stats.Fragments, stats.Duration.Round(time.Millisecond))
		for _, ingestErr := range stats.Errors {
			fmt.Fprintf(os.Stderr, "  error: %v\n", ingestErr)
		}
	}
	return nil
}

// selectIngestors builds the ingestors for the requested source types, or
// for every configured source when none are named.
func selectIngestors(cfg *config.Config, args []string) ([]ingest.Ingestor, error) {
	wanted := make(map[string]bool, len(args))
	for _, arg := range args {
		switch arg {
		case "documents", "web", "api":
			wanted[arg] = true
		default:
			return nil, fmt.Errorf("unknown source type %q: want documents, web, or api", arg)
		}
	}
	all := len(wanted) == 0

	var ingestors []ingest.Ingestor
	if (all || wanted["documents"]) && len(cfg.DocumentFolders) > 0 {
		ingestors = append(ingestors, &ingest.DocumentIngestor{
			Folders: cfg.DocumentFolders,
			Include: cfg.Include,
			Exclude: cfg.Exclude,
		})
	}
	if (all || wanted["web"]) && len(cfg.WebSources) > 0 {
		sources := make([]ingest.WebSource, len(cfg.WebSources))
		for i, src := range cfg.WebSources {
			sources[i] = ingest.WebSource{URL: src.URL, MaxPages: src.MaxPages}
		}
		ingestors = append(ingestors, &ingest.WebIngestor{Sources: sources})
	}
	if (all || wanted["api"]) && len(cfg.APISources) > 0 {
		sources := make([]ingest.APISource, len(cfg.APISources))
		for i, src := range cfg.APISources {
			sources[i] = ingest.APISource{
				Name:      src.Name,
				URL:       src.URL,
				Auth:      src.Auth,
				TextField: src.TextField,
				Labels:    src.Labels,
			}
		}
		ingestors = append(ingestors, &ingest.APIIngestor{Sources: sources})
	}

	if len(ingestors) == 0 {
		return nil, fmt.Errorf("no sources configured: add document_folders, web_sources, or api_sources to %s", cfgFile)
	}
	return ingestors, nil
}
