package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/josephgoksu/chorepay/types"
	"github.com/spf13/viper"
)

const (
	configName = ".chorepay"
	envPrefix  = "CHOREPAY"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// validate is a single instance of Translate, it caches struct info
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// validateAppConfig performs validation on the AppConfig struct.
func validateAppConfig(config *types.AppConfig) error {
	return validate.Struct(config)
}

// setDefaults registers every configuration key with its default value.
func setDefaults() {
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.host", "")
	viper.SetDefault("server.staticDir", "")
	viper.SetDefault("server.allowedOrigins", []string{})
	viper.SetDefault("server.maxBodyBytes", 5<<20)
	viper.SetDefault("server.shutdownTimeoutSeconds", 10)

	viper.SetDefault("data.file", "data/tasks.json")
	viper.SetDefault("data.format", "json")
	viper.SetDefault("data.backend", "file")
	viper.SetDefault("data.uploadsDir", "data/uploads")
	viper.SetDefault("data.seed", true)

	viper.SetDefault("rewards.pool", 3000)
	viper.SetDefault("rewards.bonus", 500)
	viper.SetDefault("rewards.requireProof", false)

	viper.SetDefault("images.maxBytes", 500*1024)
	viper.SetDefault("watch.enabled", false)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.apiKey", "")
	viper.SetDefault("telemetry.endpoint", "")

	viper.SetDefault("log.format", "text")
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	// It's okay if .env file doesn't exist.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)                          // e.g., CHOREPAY_DATA_FILE
	viper.AutomaticEnv()                                   // Read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // Replace dots with underscores in env var names
	// The plain PORT variable is what hosting platforms set.
	_ = viper.BindEnv("server.port", envPrefix+"_SERVER_PORT", "PORT")

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(configName)
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "No config file found. Using defaults and environment variables.")
		}
	} else {
		// Found but unreadable: a missing --config file lands here too.
		HandleFatalError("Error reading config file: "+viper.ConfigFileUsed(), err)
	}

	setDefaults()

	if err := loadAppConfig(&GlobalAppConfig); err != nil {
		HandleFatalError("Configuration error: "+err.Error(), err)
	}
}

// loadAppConfig unmarshals the merged viper state into cfg and validates it.
func loadAppConfig(cfg *types.AppConfig) error {
	*cfg = types.AppConfig{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validateAppConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GetConfig returns a pointer to the global types.AppConfig instance.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}
