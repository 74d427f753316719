package di

import (
	"flag"
	"fmt"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/factory"
	"github.com/mikey/inbox-triage/internal/logging"
)

// Classification strategies selectable from the command line
const (
	StrategyKeyword    = "keyword"
	StrategyGenerative = "generative"
)

// Export formats
const (
	ExportDetailed   = "detailed"
	ExportComparison = "comparison"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Generation flags
	Provider    string
	Strategy    string
	MaxTokens   int
	Temperature float64
	TopP        float64
	MaxBodySize int

	// Ollama flags
	OllamaURL   string
	OllamaModel string

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Sender flags
	Contacts   string
	InContacts bool

	// Tag flags
	AllowedTags string

	// Output flags
	Export         string
	Out            string
	IncludeSnippet bool
	JSONOutput     bool

	// Input flags
	Files      []string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags(fs *flag.FlagSet, args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}

	// Generation flags
	fs.StringVar(&flags.Provider, "provider", "ollama", "Text generation provider (ollama, bedrock, gemini, openai)")
	fs.StringVar(&flags.Strategy, "strategy", StrategyGenerative, "Classification strategy (keyword, generative)")
	fs.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for the generated reply")
	fs.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for generation")
	fs.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for generation")
	fs.IntVar(&flags.MaxBodySize, "max-body-size", 2000, "Maximum email body size placed in the prompt")

	// Ollama flags
	fs.StringVar(&flags.OllamaURL, "ollama-url", "http://localhost:11434", "Base URL of the Ollama server")
	fs.StringVar(&flags.OllamaModel, "ollama-model", "llama3.2", "Ollama model name")

	// Bedrock flags
	fs.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	fs.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	fs.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	fs.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	fs.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	fs.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4", "OpenAI model name")

	// Sender flags
	fs.StringVar(&flags.Contacts, "contacts", "", "Comma-separated contact addresses or @domains")
	fs.BoolVar(&flags.InContacts, "in-contacts", false, "Treat every sender as a contact")

	// Tag flags
	fs.StringVar(&flags.AllowedTags, "tags", "", "Comma-separated allowed tags (default vocabulary if empty)")

	// Output flags
	fs.StringVar(&flags.Export, "export", "", "Write a CSV export instead of a report (detailed, comparison)")
	fs.StringVar(&flags.Out, "out", "", "Export file (stdout if not specified)")
	fs.BoolVar(&flags.IncludeSnippet, "snippet", false, "Include a body snippet in the detailed export")
	fs.BoolVar(&flags.JSONOutput, "json", false, "Print results as JSON")

	// Input flags
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides generation flags)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	flags.Files = fs.Args()

	if err := flags.validate(); err != nil {
		return nil, err
	}
	return flags, nil
}

func (f *CLIFlags) validate() error {
	switch f.Strategy {
	case StrategyKeyword, StrategyGenerative:
	default:
		return fmt.Errorf("unknown strategy %q", f.Strategy)
	}
	switch f.Export {
	case "", ExportDetailed, ExportComparison:
	default:
		return fmt.Errorf("unknown export format %q", f.Export)
	}
	return nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		var cfg *config.Config
		if flags.ConfigFile != "" {
			loaded, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", flags.ConfigFile))
			cfg = loaded
		} else {
			cfg = createConfigFromFlags(flags)
		}
		applyCLIOverrides(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := providePipeline(container); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set LLM provider
	v.Set("llm.provider", flags.Provider)

	// Set provider-specific configuration
	switch flags.Provider {
	case "ollama":
		v.Set("ollama.base_url", flags.OllamaURL)
		v.Set("ollama.model", flags.OllamaModel)
		v.Set("ollama.temperature", flags.Temperature)
		v.Set("ollama.max_body_size", flags.MaxBodySize)
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
		v.Set("bedrock.max_body_size", flags.MaxBodySize)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
		v.Set("gemini.max_body_size", flags.MaxBodySize)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
		v.Set("openai.max_body_size", flags.MaxBodySize)
	}

	return config.NewFromViper(v)
}

// applyCLIOverrides sets what the CLI always controls, config file or not
func applyCLIOverrides(cfg *config.Config, flags *CLIFlags) {
	cfg.Set("server.filter_type", "cli")
	cfg.Set("cli.verbose", flags.Verbose)
	cfg.Set("cli.json", flags.JSONOutput)

	// No cache for one-shot runs
	cfg.Set("cache.enabled", false)

	if flags.Strategy == StrategyKeyword {
		cfg.Set("llm.provider", factory.ProviderNone)
	}

	switch {
	case flags.InContacts:
		cfg.Set("contacts.provider", "everyone")
	case flags.Contacts != "":
		var addresses, domains []string
		for _, entry := range splitList(flags.Contacts) {
			if strings.HasPrefix(entry, "@") || !strings.Contains(entry, "@") {
				domains = append(domains, entry)
			} else {
				addresses = append(addresses, entry)
			}
		}
		cfg.Set("contacts.provider", "static")
		cfg.Set("contacts.addresses", addresses)
		cfg.Set("contacts.domains", domains)
	}

	if tags := splitList(flags.AllowedTags); len(tags) > 0 {
		cfg.Set("triage.allowed_tags", tags)
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
