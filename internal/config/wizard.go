package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// .comparador.yml, and returns it.
func RunWizard() (*Config, error) {
	fmt.Println("Bienvenido a comparador. Vamos a configurar el proyecto.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Embedding provider.
	embeddingPrompt := promptui.Select{
		Label: "Proveedor de embeddings",
		Items: []string{
			"ollama — local, sin clave de API (nomic-embed-text)",
			"openai — requiere OPENAI_API_KEY (text-embedding-3-small)",
		},
	}
	embeddingIdx, _, err := embeddingPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding selection: %w", err)
	}
	if embeddingIdx == 1 {
		cfg.Embedding = EmbeddingConfig{
			Provider:   EmbeddingOpenAI,
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
		}
	}

	// 2. Default generation backend.
	backendPrompt := promptui.Prompt{
		Label:   "Backend por defecto (proveedor:modelo)",
		Default: cfg.Backends.Default,
	}
	backend, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	cfg.Backends.Default = strings.TrimSpace(backend)

	// 3. Document folders.
	foldersPrompt := promptui.Prompt{
		Label:   "Carpetas de documentos (separadas por comas, vacío para ninguna)",
		Default: "",
	}
	folders, err := foldersPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("document folders: %w", err)
	}
	cfg.DocumentFolders = splitAndTrim(folders)

	// 4. Store directory.
	storePrompt := promptui.Prompt{
		Label:   "Directorio del vectorstore",
		Default: cfg.StoreDir,
	}
	storeDir, err := storePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("store dir: %w", err)
	}
	cfg.StoreDir = storeDir

	// 5. Number of fragments per query.
	kPrompt := promptui.Prompt{
		Label:   "Fragmentos por consulta (k, 1-10)",
		Default: strconv.Itoa(cfg.RAG.K),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 10 {
				return fmt.Errorf("debe ser un entero entre 1 y 10")
			}
			return nil
		},
	}
	kStr, err := kPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("k: %w", err)
	}
	cfg.RAG.K, _ = strconv.Atoi(kStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(DefaultConfigFile); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguración guardada en %s\n", DefaultConfigFile)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
