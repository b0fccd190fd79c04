package cmd

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"jobsieve/internal/jobtech"
	"jobsieve/internal/snapshot"
)

const (
	app = "jobsieve"

	defaultSearchQuery     = "AI"
	defaultProfilePath     = "profiles/me.json"
	defaultStoreDir        = "data"
	defaultSQLitePath      = "data/jobsieve.db"
	defaultMinCallInterval = 2 * time.Second
)

type Config struct {
	Store     *StoreConfig          `mapstructure:"store"`
	Search    *jobtech.SearchParams `mapstructure:"search"`
	Profile   *ProfileConfig        `mapstructure:"profile"`
	UserAgent string                `mapstructure:"user-agent"`
	AI        *AIConfig             `mapstructure:"ai"`
}

type StoreConfig struct {
	Backend    string `mapstructure:"backend"`
	Dir        string `mapstructure:"dir"`
	SQLitePath string `mapstructure:"sqlite-path"`
}

type ProfileConfig struct {
	Path string `mapstructure:"path"`
}

type AIConfig struct {
	Provider        string        `mapstructure:"provider"`
	MinCallInterval time.Duration `mapstructure:"min-call-interval"`
	MaxLogLength    int           `mapstructure:"max-log-length"`
	Gemini          *GeminiConfig `mapstructure:"gemini"`
	OpenAI          *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey         string `mapstructure:"api-key"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	KeyringAccount string `mapstructure:"keyring-account"`
	Model          string `mapstructure:"model"`
	MaxRetries     int    `mapstructure:"max-retries"`
}

type OpenAIConfig struct {
	BaseURL        string `mapstructure:"base-url"`
	APIKey         string `mapstructure:"api-key"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	KeyringAccount string `mapstructure:"keyring-account"`
	Model          string `mapstructure:"model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobsieve is a daily job-intake cli: it fetches postings, drops the ones seen yesterday and evaluates the rest against a candidate profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobsieve.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is needed only for the run and fetch commands. Without one we
	// can skip initialization.
	if runCmd.CalledAs() == "" && fetchCmd.CalledAs() == "" {
		return
	}

	// A .env in the working directory feeds the environment bindings.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	return config, nil
}

func (c *Config) searchParams() *jobtech.SearchParams {
	params := &jobtech.SearchParams{}
	if c != nil && c.Search != nil {
		*params = *c.Search
	}
	if strings.TrimSpace(params.Query) == "" {
		params.Query = defaultSearchQuery
	}

	return params
}

func (c *Config) profilePath() string {
	if c != nil && c.Profile != nil && strings.TrimSpace(c.Profile.Path) != "" {
		return c.Profile.Path
	}

	return defaultProfilePath
}

// buildStore picks the snapshot backend from the config, defaulting to plain
// JSON files.
func buildStore(config *Config) (snapshot.Store, error) {
	backend, dir, path := "file", defaultStoreDir, defaultSQLitePath
	if config != nil && config.Store != nil {
		if s := strings.TrimSpace(config.Store.Backend); s != "" {
			backend = strings.ToLower(s)
		}
		if s := strings.TrimSpace(config.Store.Dir); s != "" {
			dir = s
		}
		if s := strings.TrimSpace(config.Store.SQLitePath); s != "" {
			path = s
		}
	}

	switch backend {
	case "file":
		return snapshot.NewFileStore(dir), nil
	case "sqlite":
		return snapshot.NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}
}
