package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/siddhantttt/context-iq/internal/adapters/driven/ai"
	"github.com/siddhantttt/context-iq/internal/core/domain"
)

// Provider checks, replaced in tests.
var (
	checkEmbedding = ai.ValidateEmbeddingConfig
	checkLLM       = ai.ValidateLLMConfig
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change settings stored in config.toml.

Environment variables (OPENAI_API_KEY, OPENAI_MODEL, OPENAI_BASE_URL,
OLLAMA_BASE_URL, CHUNK_SIZE_TOKENS, CONTEXTIQ_INDEX_PATH,
CONTEXTIQ_EMBEDDING_PROVIDER, CONTEXTIQ_LLM_PROVIDER) override the file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key, for example:

  contextiq config set llm.model gpt-4o
  contextiq config set embedding.provider ollama

API keys may be omitted to be prompted for without echo:

  contextiq config set llm.api_key`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		cmd.Println(settingsService.Path())
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List recognised setting keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		for _, k := range settingsService.Keys() {
			cmd.Println(k)
		}
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the AI providers are reachable",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

var configWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Choose the embedding and LLM providers step by step, then check them.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigWizard,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configWizardCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Data dir: %s\n", settings.DataDir)
	cmd.Printf("  Index path: %s\n", settings.Index.Path)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Dimensions: %d\n", settings.Index.Dimensions)
	cmd.Printf("  Top K: %d\n", settings.Index.TopK)
	cmd.Printf("  Max context chars: %d\n", settings.Index.MaxContextChars)
	cmd.Printf("  Chunk target tokens: %d\n", settings.Chunking.TargetTokens)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	printEndpoint(cmd, settings.Embedding.Provider, settings.Embedding.BaseURL, settings.Embedding.APIKey)
	if settings.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Requests/s: %g\n", settings.Embedding.RequestsPerSecond)
	}
	cmd.Printf("  Retry: %d attempts, %s..%s\n", settings.Embedding.Retry.MaxAttempts,
		settings.Embedding.Retry.BaseDelay, settings.Embedding.Retry.MaxDelay)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	printEndpoint(cmd, settings.LLM.Provider, settings.LLM.BaseURL, settings.LLM.APIKey)
	cmd.Printf("  Temperature: %g\n", settings.LLM.Temperature)
	cmd.Printf("  Max tokens: %d\n", settings.LLM.MaxTokens)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Println()

	cmd.Printf("Config file: %s\n", settingsService.Path())
	return nil
}

func printEndpoint(cmd *cobra.Command, provider domain.AIProvider, baseURL, apiKey string) {
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if !provider.RequiresAPIKey() {
		return
	}
	if apiKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case strings.HasSuffix(key, ".api_key"):
		cmd.Printf("Enter %s: ", key)
		value = readPassword(cmd.InOrStdin())
		cmd.Println()
	default:
		return fmt.Errorf("a value is required for %s", key)
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	shown := value
	if strings.HasSuffix(key, ".api_key") {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return checkProviders(commandContext(cmd), cmd, settings)
}

func checkProviders(ctx context.Context, cmd *cobra.Command, settings *domain.Settings) error {
	var failed int

	cmd.Printf("Embedding (%s, %s)... ", settings.Embedding.Provider, settings.Embedding.Model)
	if err := checkEmbedding(ctx, &settings.Embedding, settings.Index.Dimensions); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		failed++
	} else {
		cmd.Println("OK")
	}

	cmd.Printf("LLM (%s, %s)... ", settings.LLM.Provider, settings.LLM.Model)
	if err := checkLLM(ctx, &settings.LLM); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		failed++
	} else {
		cmd.Println("OK")
	}

	if failed > 0 {
		return fmt.Errorf("%d provider checks failed", failed)
	}
	return nil
}

func runConfigWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("contextiq Setup Wizard")
	cmd.Println("======================")
	cmd.Println()

	in := cmd.InOrStdin()
	reader := bufio.NewReader(in)

	cmd.Println("Step 1: Embedding Provider")
	cmd.Println("--------------------------")
	if err := configureProvider(cmd, reader, in, "embedding", domain.DefaultEmbeddingModels()); err != nil {
		return err
	}

	cmd.Println("Step 2: LLM Provider")
	cmd.Println("--------------------")
	if err := configureProvider(cmd, reader, in, "llm", domain.DefaultLLMModels()); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Checking providers")
	cmd.Println("------------------")
	if err := checkProviders(commandContext(cmd), cmd, settings); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Settings were saved; run 'contextiq config check' after fixing the providers.")
		return nil
	}
	cmd.Println()
	cmd.Println("All settings are valid and saved.")
	return nil
}

// configureProvider prompts for one provider section (embedding or llm).
func configureProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	in io.Reader,
	section string,
	defaultModels map[domain.AIProvider]string,
) error {
	providers := domain.AllProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := defaultModels[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key (blank to use OPENAI_API_KEY): ")
		apiKey = readPasswordFrom(reader, in)
		cmd.Println()
	}

	if err := settingsService.Set(section+".provider", provider.String()); err != nil {
		return fmt.Errorf("failed to set %s provider: %w", section, err)
	}
	if err := settingsService.Set(section+".model", model); err != nil {
		return fmt.Errorf("failed to set %s model: %w", section, err)
	}
	if apiKey != "" {
		if err := settingsService.Set(section+".api_key", apiKey); err != nil {
			return fmt.Errorf("failed to set %s api key: %w", section, err)
		}
	}

	cmd.Printf("%s provider: %s (%s)\n\n", section, provider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when in is the terminal.
func readPassword(in io.Reader) string {
	return readPasswordFrom(bufio.NewReader(in), in)
}

func readPasswordFrom(reader *bufio.Reader, in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
