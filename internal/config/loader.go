package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// DotEnvFile is read from the working directory before the environment is consulted.
const DotEnvFile = ".env"

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string][]string{
	"openai.api_key":        {"OPENAI_API_KEY"},
	"openai.base_url":       {"OPENAI_BASE_URL"},
	"openai.model":          {"OPENAI_MODEL"},
	"openai.assistant_id":   {"OPENAI_ASSISTANT_ID"},
	"openai.timeout":        {"OPENAI_TIMEOUT"},
	"bitquery.api_key":      {"BITQUERY_API_KEY", "BIQUERY_API_KEY"},
	"bitquery.endpoint":     {"BITQUERY_ENDPOINT"},
	"dexscreener.endpoint":  {"DEXSCREENER_ENDPOINT"},
	"trade.endpoint":        {"PUMPPORTAL_ENDPOINT"},
	"trade.private_keypair": {"PRIVATE_KEYPAIR"},
	"trade.rpc_endpoint":    {"RPC_ENDPOINT"},
	"trade.slippage":        {"BLINX_TRADE_SLIPPAGE"},
	"trade.priority_fee":    {"BLINX_TRADE_PRIORITY_FEE"},
	"poll.interval":         {"BLINX_POLL_INTERVAL"},
	"poll.max_attempts":     {"BLINX_POLL_MAX_ATTEMPTS"},
	"poll.timeout":          {"BLINX_POLL_TIMEOUT"},
	"tools.timeout":         {"BLINX_TOOL_TIMEOUT"},
	"tools.concurrency":     {"BLINX_TOOL_CONCURRENCY"},
	"tools.max_iterations":  {"BLINX_TOOL_MAX_ITERATIONS"},
	"log_level":             {"BLINX_LOG_LEVEL"},
	"persona_file":          {"BLINX_PERSONA_FILE"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("openai.timeout", 60*time.Second)
	v.SetDefault("bitquery.endpoint", "https://streaming.bitquery.io/eap")
	v.SetDefault("dexscreener.endpoint", "https://api.dexscreener.com")
	v.SetDefault("trade.endpoint", "https://pumpportal.fun/api/trade-local")
	v.SetDefault("trade.rpc_endpoint", "https://api.mainnet-beta.solana.com")
	v.SetDefault("trade.slippage", 10)
	v.SetDefault("trade.priority_fee", 0.00001)
	v.SetDefault("poll.interval", time.Second)
	v.SetDefault("poll.max_attempts", 300)
	v.SetDefault("poll.timeout", 5*time.Minute)
	v.SetDefault("tools.timeout", 30*time.Second)
	v.SetDefault("tools.concurrency", 4)
	v.SetDefault("tools.max_iterations", 20)
	v.SetDefault("log_level", "warn")
}

// Load builds the Config from defaults, an optional YAML file named by
// BLINX_CONFIG, the .env file in the working directory and the environment,
// in increasing order of precedence.
func Load() (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if path := os.Getenv("BLINX_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// loadDotEnv seeds the environment from path without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
