package cmd

import (
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "leadpulse"

	geminiKeyEnv = "GEMINI_API_KEY"
)

type Config struct {
	Server  *ServerConfig  `mapstructure:"server"`
	LLM     *LLMConfig     `mapstructure:"llm"`
	Scoring *ScoringConfig `mapstructure:"scoring"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LLMConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Provider         string        `mapstructure:"provider"`
	MaxAttempts      int           `mapstructure:"max-attempts"`
	TimeoutSeconds   int           `mapstructure:"timeout-seconds"`
	InitialBackoffMs int           `mapstructure:"initial-backoff-ms"`
	MaxBackoffMs     int           `mapstructure:"max-backoff-ms"`
	MinNotesLength   int           `mapstructure:"min-notes-length"`
	MaxLogLength     int           `mapstructure:"max-log-length"`
	Gemini           *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type ScoringConfig struct {
	MaxResults  int `mapstructure:"max-results"`
	MaxParallel int `mapstructure:"max-parallel"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "leadpulse scores real-estate leads and evaluates sales calls",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is leadpulse.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Local overrides for development; a missing .env file is fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Every setting has a default, so only an explicitly requested
		// config file is required to exist.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}
	return config, nil
}
