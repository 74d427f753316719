package config

// LLMConfig represents the configuration for the text-generation provider
type LLMConfig struct {
	Provider string
}

// OllamaConfig represents the configuration for a local Ollama server
type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature float64
	NumPredict  int
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// TriageConfig represents the classification pipeline settings
type TriageConfig struct {
	AllowedTags      []string
	FallbackOnError  bool
	BatchConcurrency int
}

// ContactsConfig represents the contacts lookup settings
type ContactsConfig struct {
	Provider              string
	Addresses             []string
	Domains               []string
	GoogleCredentialsFile string
	GoogleTokenFile       string
}

// CacheConfig represents the result cache settings
type CacheConfig struct {
	Enabled       bool
	Type          string
	SQLitePath    string
	MySQLDSN      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// HeaderNames are the headers the SMTP filter writes
type HeaderNames struct {
	Tags     string
	Intent   string
	Urgency  string
	Category string
	Summary  string
}

// ServerConfig represents the filter server settings
type ServerConfig struct {
	FilterType    string
	ListenAddress string
	Headers       HeaderNames
	RelayEnabled  bool
	RelayAddress  string
	RelayPort     int
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetOllama returns the Ollama configuration
func (c *Config) GetOllama() OllamaConfig {
	return OllamaConfig{
		BaseURL:     c.GetString("ollama.base_url"),
		Model:       c.GetString("ollama.model"),
		Temperature: c.GetFloat64("ollama.temperature"),
		NumPredict:  c.GetInt("ollama.num_predict"),
		MaxBodySize: c.GetInt("ollama.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetTriage returns the classification pipeline configuration
func (c *Config) GetTriage() TriageConfig {
	return TriageConfig{
		AllowedTags:      c.GetStringSlice("triage.allowed_tags"),
		FallbackOnError:  c.GetBool("triage.fallback_on_error"),
		BatchConcurrency: c.GetInt("triage.batch_concurrency"),
	}
}

// GetContacts returns the contacts lookup configuration
func (c *Config) GetContacts() ContactsConfig {
	return ContactsConfig{
		Provider:              c.GetString("contacts.provider"),
		Addresses:             c.GetStringSlice("contacts.addresses"),
		Domains:               c.GetStringSlice("contacts.domains"),
		GoogleCredentialsFile: c.GetString("contacts.google.credentials_file"),
		GoogleTokenFile:       c.GetString("contacts.google.token_file"),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() CacheConfig {
	return CacheConfig{
		Enabled:       c.GetBool("cache.enabled"),
		Type:          c.GetString("cache.type"),
		SQLitePath:    c.GetString("cache.sqlite_path"),
		MySQLDSN:      c.GetString("cache.mysql_dsn"),
		RedisAddr:     c.GetString("cache.redis_addr"),
		RedisPassword: c.GetString("cache.redis_password"),
		RedisDB:       c.GetInt("cache.redis_db"),
	}
}

// GetServer returns the filter server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		FilterType:    c.GetString("server.filter_type"),
		ListenAddress: c.GetString("server.listen_address"),
		Headers: HeaderNames{
			Tags:     c.GetString("server.headers.tags"),
			Intent:   c.GetString("server.headers.intent"),
			Urgency:  c.GetString("server.headers.urgency"),
			Category: c.GetString("server.headers.category"),
			Summary:  c.GetString("server.headers.summary"),
		},
		RelayEnabled: c.GetBool("server.relay.enabled"),
		RelayAddress: c.GetString("server.relay.address"),
		RelayPort:    c.GetInt("server.relay.port"),
	}
}
