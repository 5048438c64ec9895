package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	AI struct {
		PerplexityAPIKey string `yaml:"perplexityApiKey"`
		PerplexityModel  string `yaml:"perplexityModel"`
		OpenAIAPIKey     string `yaml:"openaiApiKey"`
		OpenAIModel      string `yaml:"openaiModel"`
	} `yaml:"ai"`

	Credits struct {
		FreeMonthlyTokens int64 `yaml:"freeMonthlyTokens"`
		ProMonthlyTokens  int64 `yaml:"proMonthlyTokens"`
	} `yaml:"credits"`

	// APIKeys maps tenant id -> API key for the auth middleware.
	APIKeys map[string]string `yaml:"apiKeys"`
}

// Load reads the YAML config file and applies env overrides for secrets.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Secrets can always come from the environment instead of the file.
	if v := os.Getenv("PERPLEXITY_API_KEY"); v != "" {
		cfg.AI.PerplexityAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIAPIKey = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "mysql"
	}
	if cfg.Credits.FreeMonthlyTokens == 0 {
		cfg.Credits.FreeMonthlyTokens = 10000
	}
	if cfg.Credits.ProMonthlyTokens == 0 {
		cfg.Credits.ProMonthlyTokens = 100000
	}
	return &cfg, nil
}

// MySQLDSN builds the DSN for go-sql-driver/mysql.
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds the DSN for lib/pq.
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}
