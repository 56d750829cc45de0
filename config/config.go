package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultStageATimeout = 20 * time.Second
	defaultStageBTimeout = 45 * time.Second
	defaultCacheCapacity = 128
	defaultRateWindow    = 60 * time.Second
	defaultRateMax       = 10
)

type Config struct {
	config *viper.Viper
}

func Load() (*Config, error) {

	env := os.Getenv(keyEnv)
	if len(env) == 0 {
		env = envLocal
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

func (c *Config) GetPort() string {
	port := c.config.GetString("PORT")
	if len(port) == 0 {
		port = c.config.GetString("server.port")
	}

	return port
}

// GetDocsPath is the directory the document index is built from.
func (c *Config) GetDocsPath() string {
	docsPath := c.config.GetString("DOCS_PATH")
	if len(docsPath) == 0 {
		docsPath = c.config.GetString("documents.path")
	}

	return docsPath
}

func (c *Config) GetDocStorePath() string {
	storePath := c.config.GetString("DOCSTORE_PATH")
	if len(storePath) == 0 {
		storePath = c.config.GetString("database.docstore_path")
	}

	return storePath
}

func (c *Config) GetLLMAPIKey() string {
	apiKey := c.config.GetString("LLM_API_KEY")
	if len(apiKey) == 0 {
		apiKey = c.config.GetString("llm.api_key")
	}

	return apiKey
}

func (c *Config) GetLLMBaseURL() string {
	baseURL := c.config.GetString("LLM_BASE_URL")
	if len(baseURL) == 0 {
		baseURL = c.config.GetString("llm.base_url")
	}

	return baseURL
}

func (c *Config) GetLLMModel() string {
	model := c.config.GetString("LLM_MODEL")
	if len(model) == 0 {
		model = c.config.GetString("llm.model")
	}

	return model
}

// GetLLMFallbackModel is the cheaper model used for the one-shot retry after the
// backend reports a rate limit.
func (c *Config) GetLLMFallbackModel() string {
	model := c.config.GetString("LLM_FALLBACK_MODEL")
	if len(model) == 0 {
		model = c.config.GetString("llm.fallback_model")
	}

	return model
}

func (c *Config) GetStageATimeout() time.Duration {
	timeout := c.config.GetDuration("llm.select_timeout")
	if timeout == 0 {
		timeout = defaultStageATimeout
	}

	return timeout
}

func (c *Config) GetStageBTimeout() time.Duration {
	timeout := c.config.GetDuration("llm.answer_timeout")
	if timeout == 0 {
		timeout = defaultStageBTimeout
	}

	return timeout
}

func (c *Config) GetCacheCapacity() int {
	capacity := c.config.GetInt("cache.capacity")
	if capacity == 0 {
		capacity = defaultCacheCapacity
	}

	return capacity
}

func (c *Config) GetRateWindow() time.Duration {
	window := c.config.GetDuration("ratelimit.window")
	if window == 0 {
		window = defaultRateWindow
	}

	return window
}

func (c *Config) GetRateMax() int {
	maxRequests := c.config.GetInt("ratelimit.max_requests")
	if maxRequests == 0 {
		maxRequests = defaultRateMax
	}

	return maxRequests
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
