package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "profile-drafter"
)

type Config struct {
	Mode     string    `mapstructure:"mode" validate:"oneof=deterministic assisted"`
	Output   string    `mapstructure:"output" validate:"oneof=json yaml"`
	Fallback bool      `mapstructure:"fallback"`
	AI       *AIConfig `mapstructure:"ai" validate:"required"`
}

type AIConfig struct {
	Provider     string        `mapstructure:"provider" validate:"oneof=openai gemini"`
	Model        string        `mapstructure:"model"`
	BaseURL      string        `mapstructure:"base-url" validate:"omitempty,url"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	MaxRetries   int           `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MaxLogLength int           `mapstructure:"max-log-length" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "profile-drafter turns free-text candidate profiles into structured drafts",
	}

	validate = validator.New()
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.api-key-file", "PROFILE_DRAFTER_API_KEY_FILE"); err != nil {
		log.Fatalf("binding PROFILE_DRAFTER_API_KEY_FILE environment variable: %v", err)
	}

	viper.SetDefault("mode", "deterministic")
	viper.SetDefault("output", "json")
	viper.SetDefault("fallback", false)
	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.max-retries", 0)
	viper.SetDefault("ai.timeout", 60*time.Second)
	viper.SetDefault("ai.max-log-length", 200)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is profile-drafter.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Credentials may live in a local .env file; real environment variables win.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional, but a broken one is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if err := validate.Struct(config); err != nil {
		return config, err
	}

	return config, nil
}
