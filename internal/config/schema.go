// Package config defines the configuration schema for blinx.
//
// Every value can come from the process environment (optionally seeded from a
// .env file) or from a YAML file named by BLINX_CONFIG. Keys use snake_case
// under mapstructure tags so viper can decode them directly.
package config

import (
	"errors"
	"time"
)

// OpenAIConfig holds credentials for the hosted assistant service.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	// Model overrides the persona's model when set.
	Model string `mapstructure:"model"`
	// AssistantID reuses an existing assistant instead of creating one per launch.
	AssistantID string `mapstructure:"assistant_id"`
	// Timeout bounds each request to the assistant service.
	Timeout time.Duration `mapstructure:"timeout"`
}

// BitqueryConfig configures the Bitquery GraphQL endpoint used by the read tools.
type BitqueryConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

// DexScreenerConfig configures the DexScreener REST API.
type DexScreenerConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

// TradeConfig configures the trade tool.
type TradeConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	// PrivateKeypair is the base58-encoded 64-byte Solana secret key.
	PrivateKeypair string  `mapstructure:"private_keypair"`
	RPCEndpoint    string  `mapstructure:"rpc_endpoint"`
	Slippage       float64 `mapstructure:"slippage"`
	PriorityFee    float64 `mapstructure:"priority_fee"`
}

// PollConfig bounds how long a run is polled.
type PollConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	MaxAttempts uint          `mapstructure:"max_attempts"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ToolsConfig controls tool execution.
type ToolsConfig struct {
	// Timeout applies to every outbound HTTP call a tool makes.
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
	// MaxIterations caps requires_action rounds within one turn.
	MaxIterations int `mapstructure:"max_iterations"`
}

// Config is the root configuration, built once at startup and passed by
// pointer to everything that needs it.
type Config struct {
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Bitquery    BitqueryConfig    `mapstructure:"bitquery"`
	DexScreener DexScreenerConfig `mapstructure:"dexscreener"`
	Trade       TradeConfig       `mapstructure:"trade"`
	Poll        PollConfig        `mapstructure:"poll"`
	Tools       ToolsConfig       `mapstructure:"tools"`
	LogLevel    string            `mapstructure:"log_level"`
	PersonaFile string            `mapstructure:"persona_file"`
}

// Validate checks the settings the chat session cannot start without.
// Tool credentials are checked lazily by the tool that needs them.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return errors.New("OPENAI_API_KEY is not set")
	}
	if c.Poll.Timeout <= 0 {
		return errors.New("poll.timeout must be positive")
	}
	if c.Poll.MaxAttempts == 0 {
		return errors.New("poll.max_attempts must be positive")
	}
	if c.Tools.Concurrency <= 0 {
		return errors.New("tools.concurrency must be positive")
	}
	if c.Tools.MaxIterations <= 0 {
		return errors.New("tools.max_iterations must be positive")
	}
	return nil
}
