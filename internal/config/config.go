package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env     string        `yaml:"env" env-default:"local"`
	Storage StorageConfig `yaml:"storage"`
	Tokens  TokensConfig  `yaml:"tokens"`
}

type StorageConfig struct {
	// Type selects the backend: sqlite, postgres or mongo.
	Type        string      `yaml:"type" env-default:"sqlite"`
	Path        string      `yaml:"path"`
	PostgresDSN string      `yaml:"postgres_dsn" env:"POSTGRES_DSN"`
	Mongo       MongoConfig `yaml:"mongo"`
}

type MongoConfig struct {
	URI      string `yaml:"uri" env:"MONGO_URI"`
	Database string `yaml:"database"`
}

type TokensConfig struct {
	Secret   string `yaml:"secret" env:"TOKEN_SECRET" env-required:"true"`
	Issuer   string `yaml:"issuer" env-default:"localhost"`
	Audience string `yaml:"audience" env-default:"localhost"`
	// AccessTokenTTL is the fixed access token lifetime.
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env-default:"168h"`
	// RefreshEnvelopeTTL bounds the signed refresh envelope itself; the
	// stored record expiry is what validation actually enforces.
	RefreshEnvelopeTTL time.Duration `yaml:"refresh_envelope_ttl" env-default:"720h"`
	// RefreshTokenTTLDays is the default record lifetime, in whole days.
	RefreshTokenTTLDays int `yaml:"refresh_token_ttl_days" env-default:"30"`
}

func LoadConfig(path string) *Config {
	var cfg Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("config file not found: " + path)
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		panic("failed to read config: " + err.Error())
	}

	return &cfg
}
