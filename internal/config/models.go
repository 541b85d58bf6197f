package config

import (
	"time"

	"github.com/mikey/mail-insight/internal/core"
)

// MailConfig represents the IMAP mailbox configuration
type MailConfig struct {
	Address    string
	Password   string
	IMAPServer string
	IMAPPort   int
	StartTLS   bool
	Timeout    time.Duration
}

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
	Models   []string
	Timeout  time.Duration
}

// GenerationConfig holds the sampling parameters shared by every provider
type GenerationConfig struct {
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for the Gemini API
type GeminiConfig struct {
	APIKey string
	GenerationConfig
}

// VertexConfig represents the configuration for the unified Google GenAI SDK
type VertexConfig struct {
	Backend  string
	APIKey   string
	Project  string
	Location string
	GenerationConfig
}

// OpenAIConfig represents the configuration for OpenAI compatible endpoints
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	GenerationConfig
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region string
	GenerationConfig
}

// CacheConfig represents the response cache configuration
type CacheConfig struct {
	Enabled          bool
	Type             string
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	PostgresDSN      string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	ListenAddress   string
	Mode            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
	MetricsPath     string
}

// SMTPConfig represents the digest mail configuration
type SMTPConfig struct {
	Enabled  bool
	Address  string
	Username string
	Password string
	From     string
	To       []string
}

// AMQPConfig represents the completion event configuration
type AMQPConfig struct {
	Enabled    bool
	URL        string
	Exchange   string
	RoutingKey string
}

// NotifyConfig groups the notifier configurations
type NotifyConfig struct {
	SMTP SMTPConfig
	AMQP AMQPConfig
}

// SecretsConfig controls where credentials are looked up
type SecretsConfig struct {
	Keyring bool
	Service string
}

// UrgencyConfig represents the keyword classifier configuration
type UrgencyConfig struct {
	Keywords    []string
	SnippetSize int
}

// GetMail returns the mailbox configuration
func (c *Config) GetMail() (MailConfig, error) {
	timeout, err := c.GetDuration("mail.timeout")
	if err != nil {
		return MailConfig{}, err
	}
	return MailConfig{
		Address:    c.GetString("mail.address"),
		Password:   c.GetString("mail.password"),
		IMAPServer: c.GetString("mail.imap_server"),
		IMAPPort:   c.GetInt("mail.imap_port"),
		StartTLS:   c.GetBool("mail.starttls"),
		Timeout:    timeout,
	}, nil
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() (LLMConfig, error) {
	timeout, err := c.GetDuration("llm.timeout")
	if err != nil {
		return LLMConfig{}, err
	}
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
		Models:   c.GetStringSlice("llm.models"),
		Timeout:  timeout,
	}, nil
}

func (c *Config) generation(prefix string) GenerationConfig {
	return GenerationConfig{
		MaxTokens:   c.GetInt(prefix + ".max_tokens"),
		Temperature: float32(c.GetFloat64(prefix + ".temperature")),
		TopP:        float32(c.GetFloat64(prefix + ".top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:           c.GetString("gemini.api_key"),
		GenerationConfig: c.generation("gemini"),
	}
}

// GetVertex returns the Google GenAI configuration
func (c *Config) GetVertex() VertexConfig {
	return VertexConfig{
		Backend:          c.GetString("vertex.backend"),
		APIKey:           c.GetString("vertex.api_key"),
		Project:          c.GetString("vertex.project"),
		Location:         c.GetString("vertex.location"),
		GenerationConfig: c.generation("vertex"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:           c.GetString("openai.api_key"),
		BaseURL:          c.GetString("openai.base_url"),
		GenerationConfig: c.generation("openai"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:           c.GetString("bedrock.region"),
		GenerationConfig: c.generation("bedrock"),
	}
}

// GetCache returns the response cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		Enabled:          c.GetBool("cache.enabled"),
		Type:             c.GetString("cache.type"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		PostgresDSN:      c.GetString("cache.postgres_dsn"),
		RedisAddr:        c.GetString("cache.redis_addr"),
		RedisPassword:    c.GetString("cache.redis_password"),
		RedisDB:          c.GetInt("cache.redis_db"),
	}, nil
}

// GetServer returns the HTTP API configuration
func (c *Config) GetServer() (ServerConfig, error) {
	var timeouts [3]time.Duration
	for i, key := range []string{"server.read_timeout", "server.write_timeout", "server.shutdown_timeout"} {
		d, err := c.GetDuration(key)
		if err != nil {
			return ServerConfig{}, err
		}
		timeouts[i] = d
	}
	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		Mode:            c.GetString("server.mode"),
		ReadTimeout:     timeouts[0],
		WriteTimeout:    timeouts[1],
		ShutdownTimeout: timeouts[2],
		MetricsEnabled:  c.GetBool("metrics.enabled"),
		MetricsPath:     c.GetString("metrics.path"),
	}, nil
}

// GetNotify returns the notifier configuration
func (c *Config) GetNotify() NotifyConfig {
	return NotifyConfig{
		SMTP: SMTPConfig{
			Enabled:  c.GetBool("notify.smtp.enabled"),
			Address:  c.GetString("notify.smtp.address"),
			Username: c.GetString("notify.smtp.username"),
			Password: c.GetString("notify.smtp.password"),
			From:     c.GetString("notify.smtp.from"),
			To:       c.GetStringSlice("notify.smtp.to"),
		},
		AMQP: AMQPConfig{
			Enabled:    c.GetBool("notify.amqp.enabled"),
			URL:        c.GetString("notify.amqp.url"),
			Exchange:   c.GetString("notify.amqp.exchange"),
			RoutingKey: c.GetString("notify.amqp.routing_key"),
		},
	}
}

// GetSecrets returns the secret store configuration
func (c *Config) GetSecrets() SecretsConfig {
	return SecretsConfig{
		Keyring: c.GetBool("secrets.keyring"),
		Service: c.GetString("secrets.service"),
	}
}

// GetUrgency returns the keyword classifier configuration
func (c *Config) GetUrgency() UrgencyConfig {
	return UrgencyConfig{
		Keywords:    c.GetStringSlice("urgency.keywords"),
		SnippetSize: c.GetInt("urgency.snippet_size"),
	}
}

// Settings builds the immutable run settings from the analysis and llm sections
func (c *Config) Settings() (core.Settings, error) {
	var problems []string

	batchDelay, err := c.GetDuration("analysis.batch_delay")
	if err != nil {
		problems = append(problems, err.Error())
	}
	baseDelay, err := c.GetDuration("analysis.base_delay")
	if err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return core.Settings{}, &core.ConfigError{Problems: problems}
	}

	return core.Settings{
		Models:      c.GetStringSlice("llm.models"),
		Folders:     c.GetStringSlice("analysis.folders"),
		DaysBack:    c.GetInt("analysis.days_back"),
		BatchSize:   c.GetInt("analysis.batch_size"),
		MaxRetries:  c.GetInt("analysis.max_retries"),
		BaseDelay:   baseDelay,
		BatchDelay:  batchDelay,
		MaxBodySize: c.GetInt("analysis.max_body_size"),
	}, nil
}
