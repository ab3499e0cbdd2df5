package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	JWT struct {
		SecretKey string        `mapstructure:"secret_key"`
		Issuer    string        `mapstructure:"issuer"`
		Audience  string        `mapstructure:"audience"`
		AccessTTL time.Duration `mapstructure:"access_ttl"`
	} `mapstructure:"jwt"`
	RefreshToken struct {
		TTL time.Duration `mapstructure:"ttl"`
	} `mapstructure:"refresh_token"`
	PasswordReset struct {
		TokenTTL time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"password_reset"`
	LoginLimiter struct {
		MaxAttempts int           `mapstructure:"max_attempts"`
		Window      time.Duration `mapstructure:"window"`
	} `mapstructure:"login_limiter"`
}

var AppConfig Config

func LoadConfig(path string) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.SetDefault("jwt.access_ttl", "15m")
	viper.SetDefault("refresh_token.ttl", "168h")
	viper.SetDefault("password_reset.token_ttl", "1h")
	viper.SetDefault("login_limiter.max_attempts", 10)
	viper.SetDefault("login_limiter.window", "15m")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
