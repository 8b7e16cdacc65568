package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		// Backend selects the restaurant repository implementation:
		// "postgres" or "memory".
		Backend  string `mapstructure:"backend"`
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	AI struct {
		Model       string        `mapstructure:"model"`
		CallTimeout time.Duration `mapstructure:"callTimeout"`
		Sampling    struct {
			Temperature float64 `mapstructure:"temperature"`
			MaxTokens   int     `mapstructure:"maxTokens"`
			TopP        float64 `mapstructure:"topP"`
			TopK        int     `mapstructure:"topK"`
		} `mapstructure:"sampling"`
	} `mapstructure:"ai"`
	Session struct {
		Timeout          time.Duration `mapstructure:"timeout"`
		EvictionInterval time.Duration `mapstructure:"evictionInterval"`
		// OnErrorPolicy is "rollback" (keep the accumulated conversation) or
		// "reset" (wipe history and criteria) when a model call fails.
		OnErrorPolicy string `mapstructure:"onErrorPolicy"`
	} `mapstructure:"session"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	return config, nil
}
