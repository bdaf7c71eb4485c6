// Package config carries the runtime settings for the trading workflow:
// directories, LLM provider credentials, debate round limits, and data
// provider keys. Values come from defaults, an optional .env file, the
// environment, and a watchable JSON file, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	ResultsDir   string `json:"results_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`
	DBPath       string `json:"db_path"`

	LLMProvider          string `json:"llm_provider"`
	DeepThinkLLM         string `json:"deep_think_llm"`
	QuickThinkLLM        string `json:"quick_think_llm"`
	BackendURL           string `json:"backend_url"`
	MaxDebateRounds      int    `json:"max_debate_rounds"`
	MaxRiskDiscussRounds int    `json:"max_risk_rounds"`
	OnlineTools          bool   `json:"online_tools"`
	Debug                bool   `json:"debug"`
	RedditUserAgent      string `json:"reddit_user_agent"`

	CacheEnabled bool `json:"cache_enabled"`

	// LongPort OpenAPI credentials, used as the candle fallback.
	LongportAppKey      string `json:"longport_app_key"`
	LongportAppSecret   string `json:"longport_app_secret"`
	LongportAccessToken string `json:"longport_access_token"`

	// Chat model API keys.
	DeepSeekAPIKey string `json:"deepseek_api_key"`
	OpenAIAPIKey   string `json:"openai_api_key"`

	// Market and social data API keys.
	FinnhubAPIKey string `json:"finnhub_api_key"`
}

// DefaultConfig resolves directories relative to the working directory and
// applies .env plus environment overrides.
func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	cfg := DefaultConfigWithRoot(currentDir)

	// Load environment variables from .env file.
	_ = godotenv.Load()
	cfg.loadFromEnv()

	return cfg
}

// DefaultConfigWithRoot returns the built-in defaults rooted at root,
// without consulting the environment.
func DefaultConfigWithRoot(root string) *Config {
	return &Config{
		ProjectDir:   root,
		ResultsDir:   filepath.Join(root, "results"),
		DataDir:      filepath.Join(root, "data"),
		DataCacheDir: filepath.Join(root, "data", "cache"),
		DBPath:       filepath.Join(root, "data", "trading_agents.db"),

		LLMProvider:   "deepseek",
		DeepThinkLLM:  "deepseek-reasoner",
		QuickThinkLLM: "deepseek-chat",
		BackendURL:    "",

		MaxDebateRounds:      1,
		MaxRiskDiscussRounds: 1,
		OnlineTools:          true,
		Debug:                false,
		RedditUserAgent:      "trading-agents/1.0",

		CacheEnabled: true,
	}
}

func (c *Config) loadFromEnv() {
	setString := func(dst *string, key string) {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}
	setBool := func(dst *bool, key string) {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				*dst = b
			}
		}
	}
	setInt := func(dst *int, key string) {
		if val := os.Getenv(key); val != "" {
			if v, err := strconv.Atoi(val); err == nil {
				*dst = v
			}
		}
	}

	setString(&c.ProjectDir, "PROJECT_DIR")
	setString(&c.ResultsDir, "RESULTS_DIR")
	setString(&c.DataDir, "DATA_DIR")
	setString(&c.DataCacheDir, "DATA_CACHE_DIR")
	setString(&c.DBPath, "DB_PATH")

	setString(&c.LLMProvider, "LLM_PROVIDER")
	setString(&c.DeepThinkLLM, "DEEP_THINK_LLM")
	setString(&c.QuickThinkLLM, "QUICK_THINK_LLM")
	setString(&c.BackendURL, "BACKEND_URL")

	setBool(&c.CacheEnabled, "CACHE_ENABLED")
	setBool(&c.OnlineTools, "ONLINE_TOOLS")
	setBool(&c.Debug, "TRADINGAGENTS_DEBUG")

	setInt(&c.MaxDebateRounds, "MAX_DEBATE_ROUNDS")
	setInt(&c.MaxRiskDiscussRounds, "MAX_RISK_ROUNDS")

	setString(&c.LongportAppKey, "LONGPORT_APP_KEY")
	setString(&c.LongportAppSecret, "LONGPORT_APP_SECRET")
	setString(&c.LongportAccessToken, "LONGPORT_ACCESS_TOKEN")

	setString(&c.DeepSeekAPIKey, "DEEPSEEK_API_KEY")
	setString(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.FinnhubAPIKey, "FINNHUB_API_KEY")
	setString(&c.RedditUserAgent, "REDDIT_USER_AGENT")
}

// Validate rejects configurations the workflow cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ProjectDir) == "" {
		return errors.New("project_dir cannot be empty")
	}
	if strings.TrimSpace(c.ResultsDir) == "" {
		return errors.New("results_dir cannot be empty")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data_dir cannot be empty")
	}
	if c.MaxDebateRounds < 1 {
		return fmt.Errorf("max_debate_rounds must be at least 1, got %d", c.MaxDebateRounds)
	}
	if c.MaxRiskDiscussRounds < 1 {
		return fmt.Errorf("max_risk_rounds must be at least 1, got %d", c.MaxRiskDiscussRounds)
	}
	switch strings.ToLower(c.LLMProvider) {
	case "", "deepseek", "openai":
	default:
		return fmt.Errorf("unknown llm_provider %q", c.LLMProvider)
	}
	return nil
}

// EnsureDirectories creates every directory the workflow writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.ResultsDir, c.DataDir, c.DataCacheDir}
	if c.DBPath != "" {
		dirs = append(dirs, filepath.Dir(c.DBPath))
	}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
