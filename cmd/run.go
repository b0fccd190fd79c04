package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"jobsieve/internal/ai"
	"jobsieve/internal/ai/gemini"
	"jobsieve/internal/ai/openai"
	"jobsieve/internal/logger"
	"jobsieve/internal/pipeline"
	"jobsieve/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var prompt = promptui.Select{
	Label: "Evaluate today's postings with the configured model?",
	Items: []string{PromptYes, PromptNo},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate the day's postings against the candidate profile and store the verdicts",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("date", "", "run date in 2006-01-02 format (default is today, UTC)")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before spending model calls")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the jobsieve", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	runDate, err := resolveRunDate(cmd)
	if err != nil {
		logger.Fatal("resolving run date", zap.Error(err))
	}

	if cmd.Flag("auto-approve").Value.String() == "false" {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if action != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	judge, err := newJudge(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the judge", zap.Error(err))
	}

	store, err := buildStore(config)
	if err != nil {
		logger.Fatal("building the snapshot store", zap.Error(err))
	}
	defer store.Close()

	result, err := pipeline.New(store, config.profilePath(), judge, logger).Run(ctx, runDate)
	if err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}

	logger.Info("run finished",
		zap.String("run_date", result.RunDate),
		zap.String("jobs_source", result.Stats.JobsSource),
		zap.Int("jobs_loaded", result.Stats.JobsLoaded),
		zap.Int("matches", result.Stats.MatchesCount),
		zap.Int("rejected", result.Stats.RejectedCount),
	)
}

// resolveRunDate reads the --date flag, defaulting to today in UTC.
func resolveRunDate(cmd *cobra.Command) (string, error) {
	date := strings.TrimSpace(cmd.Flag("date").Value.String())
	if date == "" {
		return time.Now().UTC().Format(pipeline.DateLayout), nil
	}

	if _, err := time.Parse(pipeline.DateLayout, date); err != nil {
		return "", fmt.Errorf("invalid --date %q: expected the %s format", date, pipeline.DateLayout)
	}

	return date, nil
}

func newJudge(ctx context.Context, cfg *AIConfig, log *zap.Logger) (pipeline.Judge, error) {
	if cfg == nil {
		cfg = &AIConfig{}
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider == "" {
		provider = "gemini"
	}

	var (
		generator ai.Generator
		model     string
		err       error
	)

	switch provider {
	case "gemini":
		generator, model, err = newGeminiGenerator(ctx, cfg.Gemini, log)
	case "openai":
		generator, model, err = newOpenAIGenerator(cfg.OpenAI, log)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	minInterval := cfg.MinCallInterval
	if minInterval <= 0 {
		minInterval = defaultMinCallInterval
	}

	judgeLogger := logger.WithCommonFields(log, provider, model)

	return ai.NewJudge(generator, minInterval, cfg.MaxLogLength, judgeLogger), nil
}

func newGeminiGenerator(ctx context.Context, cfg *GeminiConfig, log *zap.Logger) (ai.Generator, string, error) {
	if cfg == nil {
		cfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:           "gemini api key",
		Value:          cfg.APIKey,
		File:           cfg.APIKeyFile,
		KeyringAccount: cfg.KeyringAccount,
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := log.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Model),
		zap.Int("ai_retry_attempts", cfg.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, genLogger)
	if err != nil {
		return nil, "", err
	}

	return generator, generator.Model(), nil
}

func newOpenAIGenerator(cfg *OpenAIConfig, log *zap.Logger) (ai.Generator, string, error) {
	if cfg == nil {
		cfg = &OpenAIConfig{}
	}

	// Local gateways such as ollama accept any key, so the key is loaded only
	// when some source for it is configured.
	var apiKey string
	configured := strings.TrimSpace(cfg.APIKey) != "" ||
		strings.TrimSpace(cfg.APIKeyFile) != "" ||
		strings.TrimSpace(cfg.KeyringAccount) != ""
	if configured {
		key, err := secrets.Load(secrets.Source{
			Name:           "openai api key",
			Value:          cfg.APIKey,
			File:           cfg.APIKeyFile,
			KeyringAccount: cfg.KeyringAccount,
		})
		if err != nil {
			return nil, "", err
		}
		apiKey = key
	}

	client, err := openai.NewClient(cfg.BaseURL, apiKey, cfg.Model, log.With(
		zap.String("provider", "openai"),
		zap.String("model", cfg.Model),
	))
	if err != nil {
		return nil, "", err
	}

	return client, client.Model(), nil
}
