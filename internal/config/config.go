package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config holds everything the server needs at startup. Secrets
// (encryption key material, gateway signing secret, SMTP password)
// come from the environment and are never defaulted in source.
type Config struct {
	Env    string
	DB     DB
	Server Server
	Crypto Crypto
	Mail   Mail
	Report Report
	Logger Logger
}

type DB struct {
	DatabaseURI string
	Migrations  string
}

type Server struct {
	// RunAddress is the loopback address the extension gateway binds to.
	RunAddress string
}

type Crypto struct {
	// EncryptionKey is the key material for credential encryption.
	EncryptionKey string
	// GatewaySecret signs extension gateway tokens.
	GatewaySecret string
	// TokenTTL bounds the lifetime of issued gateway tokens.
	TokenTTL time.Duration
}

type Mail struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Report struct {
	// TickInterval is how often the scheduler checks for due reports.
	TickInterval time.Duration
}

type Logger struct {
	LogLevel string
}

// MustLoad reads configuration from .env (if present) and the
// environment. It panics on missing secrets, since the server cannot
// run without them and must never fall back to a built-in key.
func MustLoad() *Config {
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("run_address", "127.0.0.1:45678")
	viper.SetDefault("report_tick", "24h")
	viper.SetDefault("token_ttl", "15m")
	viper.SetDefault("smtp_port", 587)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("app_env", EnvLocal)

	cfg := Config{
		Env: viper.GetString("app_env"),
		DB: DB{
			DatabaseURI: viper.GetString("database_uri"),
			Migrations:  viper.GetString("migrations_path"),
		},
		Server: Server{
			RunAddress: viper.GetString("run_address"),
		},
		Crypto: Crypto{
			EncryptionKey: viper.GetString("encryption_key"),
			GatewaySecret: viper.GetString("gateway_secret"),
			TokenTTL:      viper.GetDuration("token_ttl"),
		},
		Mail: Mail{
			Host:     viper.GetString("smtp_host"),
			Port:     viper.GetInt("smtp_port"),
			Username: viper.GetString("smtp_username"),
			Password: viper.GetString("smtp_password"),
			From:     viper.GetString("smtp_from"),
		},
		Report: Report{
			TickInterval: viper.GetDuration("report_tick"),
		},
		Logger: Logger{
			LogLevel: viper.GetString("log_level"),
		},
	}

	if cfg.Crypto.EncryptionKey == "" {
		panic(fmt.Errorf("ENCRYPTION_KEY must be set"))
	}
	if cfg.Crypto.GatewaySecret == "" {
		panic(fmt.Errorf("GATEWAY_SECRET must be set"))
	}

	return &cfg
}
