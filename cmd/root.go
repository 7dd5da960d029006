package cmd

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openhiring/job-scout/internal/search"
)

const (
	app = "job-scout"
)

type Config struct {
	Search      *search.Preferences `mapstructure:"search"`
	ResumeFile  string              `mapstructure:"resume-file"`
	TargetCount int                 `mapstructure:"target-count"`
	SerpAPI     *SerpAPIConfig      `mapstructure:"serpapi"`
	AI          *AIConfig           `mapstructure:"ai"`
	Cache       *CacheConfig        `mapstructure:"cache"`
	Freshness   *FreshnessConfig    `mapstructure:"freshness"`
}

type SerpAPIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type AIConfig struct {
	Provider     string        `mapstructure:"provider"`
	MaxRetries   int           `mapstructure:"max-retries"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	OpenAI       *OpenAIConfig `mapstructure:"openai"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type CacheConfig struct {
	Backend string       `mapstructure:"backend"`
	Redis   *RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type FreshnessConfig struct {
	MaxAgeDays       int  `mapstructure:"max-age-days"`
	KeepOffsetMarker bool `mapstructure:"keep-offset-marker"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-scout is a cli for discovering and ranking job listings against your resume",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"serpapi.api-key":      "SERPAPI_API_KEY",
		"ai.openai.api-key":    "OPENAI_API_KEY",
		"ai.gemini.api-key":    "GEMINI_API_KEY",
		"cache.redis.addr":     "REDIS_ADDR",
		"cache.redis.password": "REDIS_PASSWORD",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-scout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for the search command. If there is no config, we
	// can skip initialization.
	if searchCmd.CalledAs() == "" {
		return
	}

	// A missing .env file is fine; keys may come from the environment or
	// the config file.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
