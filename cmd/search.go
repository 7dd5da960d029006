package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/openhiring/job-scout/internal/cache"
	"github.com/openhiring/job-scout/internal/filtering"
	"github.com/openhiring/job-scout/internal/logger"
	"github.com/openhiring/job-scout/internal/pipeline"
	"github.com/openhiring/job-scout/internal/ranking"
	"github.com/openhiring/job-scout/internal/search"
	"github.com/openhiring/job-scout/internal/secrets"
	"github.com/openhiring/job-scout/internal/serpapi"
)

const (
	PromptLoadMore   = "Load more"
	PromptDumpToFile = "Dump results to file"
	PromptExit       = "Exit"

	windowSize      = 8
	defaultRedisTTL = 24 * time.Hour
)

var prompt = promptui.Select{
	Label: "Next?",
	Items: []string{PromptLoadMore, PromptDumpToFile, PromptExit},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run the job-scout search and ranking loop",
	Run: func(cmd *cobra.Command, _ []string) {
		runSearch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("resume-file", "r", "", "path to the resume text file")
	searchCmd.Flags().BoolP("once", "o", false, "print the first window and exit without prompting")

	viper.BindPFlag("resume-file", searchCmd.Flags().Lookup("resume-file"))
}

// runSearch is the main command for the cli.
func runSearch(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the job-scout", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Search == nil {
		logger.Fatal("search preferences are required under the 'search' key")
	}

	resumeText, err := loadResume(config)
	if err != nil {
		logger.Fatal("loading resume",
			zap.Error(err),
			zap.String("hint", "set the 'resume-file' key or the --resume-file flag"),
		)
	}

	serpKey, err := resolveSerpAPIKey(config)
	if err != nil {
		logger.Fatal("loading serpapi api key",
			zap.Error(err),
			zap.String("hint", "set SERPAPI_API_KEY or the 'serpapi.api-key-file' key in the configuration file"),
		)
	}

	ranker, err := buildRanker(ctx, config, logger)
	if err != nil {
		logger.Fatal("configuring the scoring provider", zap.Error(err))
	}

	bands, err := filtering.DefaultBands()
	if err != nil {
		logger.Fatal("loading experience band table", zap.Error(err))
	}

	pipe := pipeline.New(
		serpapi.New(logger, serpKey),
		ranker,
		bands,
		freshnessPolicy(config),
		logger,
		pipeline.Config{TargetCount: config.TargetCount},
	)

	logger.Info("starting the search", zap.String("keywords", config.Search.Keywords))

	res, err := pipe.Run(ctx, resumeText, config.Search, "")
	if err != nil {
		logger.Fatal("running the pipeline", zap.Error(err))
	}

	if len(res.Jobs) == 0 && !res.HasMore {
		logger.Info("exiting", zap.String("reason", "no matching jobs found"))
		return
	}

	shown := printJobs(res.Jobs, 0)
	pending := res.Buffer
	token := res.NextPageToken

	if cmd.Flag("once").Value.String() == "true" {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		switch action {
		case PromptLoadMore:
			var window []ranking.Listing
			window, pending, token, err = nextWindow(ctx, pipe, resumeText, config.Search, pending, token)
			if err != nil {
				logger.Fatal("loading more jobs", zap.Error(err))
			}
			if len(window) == 0 {
				logger.Info("no more jobs available")
				continue
			}
			shown = append(shown, printJobs(window, len(shown))...)
		case PromptDumpToFile:
			filename, err := dumpToTmpFile(shown)
			if err != nil {
				logger.Fatal("dumping results to file", zap.Error(err))
			}
			logger.Info("dumping results to file", zap.String("filename", filename))
		case PromptExit:
			logger.Info("exiting", zap.String("reason", "got exit from prompt"))
			return
		}
	}
}

// nextWindow serves the next page of jobs, draining the buffered remainder
// before spending another upstream fetch.
func nextWindow(ctx context.Context, pipe *pipeline.Pipeline, resumeText string, prefs *search.Preferences, pending []ranking.Listing, token string) ([]ranking.Listing, []ranking.Listing, string, error) {
	if len(pending) > 0 {
		size := len(pending)
		if size > windowSize {
			size = windowSize
		}
		return pending[:size], pending[size:], token, nil
	}

	if token == "" {
		return nil, nil, "", nil
	}

	res, err := pipe.Run(ctx, resumeText, prefs, token)
	if err != nil {
		return nil, nil, "", err
	}

	return res.Jobs, res.Buffer, res.NextPageToken, nil
}

func printJobs(jobs []ranking.Listing, offset int) []ranking.Listing {
	for i, job := range jobs {
		link := job.DetailsLink
		if link == "" {
			link = "(no link)"
		}
		fmt.Printf("%2d. [%2d/10] %s / %s\n    %s\n    %s\n",
			offset+i+1, job.MatchScore, job.JobTitle, job.Company, job.Reason, link,
		)
	}
	return jobs
}

func dumpToTmpFile(jobs []ranking.Listing) (string, error) {
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}

	file, err := os.CreateTemp("", app+"-results-*.json")
	if err != nil {
		return "", fmt.Errorf("create results file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return "", fmt.Errorf("write results file: %w", err)
	}

	return file.Name(), nil
}

func loadResume(config *Config) (string, error) {
	path := strings.TrimSpace(config.ResumeFile)
	if path == "" {
		path = strings.TrimSpace(viper.GetString("resume-file"))
	}
	if path == "" {
		return "", errors.New("resume file is not configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading resume file %q: %w", path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("resume file %q is empty", path)
	}

	return text, nil
}

func resolveSerpAPIKey(config *Config) (string, error) {
	src := secrets.Source{Name: "serpapi api key"}
	if config.SerpAPI != nil {
		src.Value = config.SerpAPI.APIKey
		src.File = config.SerpAPI.APIKeyFile
	}
	return secrets.Load(src)
}

func buildRanker(ctx context.Context, config *Config, logger *zap.Logger) (*ranking.Ranker, error) {
	ai := config.AI
	if ai == nil {
		ai = &AIConfig{}
	}

	providerName := strings.ToLower(strings.TrimSpace(ai.Provider))
	if providerName == "" {
		providerName = "openai"
	}

	var (
		provider ranking.Provider
		err      error
	)
	switch providerName {
	case "openai":
		cfg := ai.OpenAI
		if cfg == nil {
			cfg = &OpenAIConfig{}
		}
		key, kerr := secrets.Load(secrets.Source{Name: "openai api key", Value: cfg.APIKey, File: cfg.APIKeyFile})
		if kerr != nil {
			return nil, kerr
		}
		provider, err = ranking.NewOpenAI(key, cfg.Model)
	case "gemini":
		cfg := ai.Gemini
		if cfg == nil {
			cfg = &GeminiConfig{}
		}
		key, kerr := secrets.Load(secrets.Source{Name: "gemini api key", Value: cfg.APIKey, File: cfg.APIKeyFile})
		if kerr != nil {
			return nil, kerr
		}
		provider, err = ranking.NewGemini(ctx, key, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", providerName)
	}
	if err != nil {
		return nil, err
	}

	store, err := buildCache(config, logger)
	if err != nil {
		return nil, err
	}

	return ranking.New(provider, store, logger, ai.MaxRetries, ai.MaxLogLength), nil
}

func buildCache(config *Config, logger *zap.Logger) (cache.Cache, error) {
	cc := config.Cache
	if cc == nil {
		return cache.NewMemory(), nil
	}

	switch backend := strings.ToLower(strings.TrimSpace(cc.Backend)); backend {
	case "", "memory":
		return cache.NewMemory(), nil
	case "none":
		return nil, nil
	case "redis":
		rc := cc.Redis
		if rc == nil || strings.TrimSpace(rc.Addr) == "" {
			return nil, errors.New("cache.redis.addr is required for the redis backend")
		}
		ttl := rc.TTL
		if ttl <= 0 {
			ttl = defaultRedisTTL
		}
		return cache.NewRedis(logger, rc.Addr, rc.Password, rc.DB, ttl), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cc.Backend)
	}
}

func freshnessPolicy(config *Config) filtering.Policy {
	policy := filtering.DefaultPolicy()
	if config.Freshness == nil {
		return policy
	}
	if config.Freshness.MaxAgeDays > 0 {
		policy.MaxAgeDays = config.Freshness.MaxAgeDays
	}
	policy.RejectOffsetMarker = !config.Freshness.KeepOffsetMarker
	return policy
}
