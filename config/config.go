package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Postgres  PostgresConfig  `mapstructure:"postgres" yaml:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	RocketMQ  RocketMQConfig  `mapstructure:"rocketmq" yaml:"rocketmq"`
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers"`
	Auth      AuthConfig      `mapstructure:"auth" yaml:"auth"`
	Chat      ChatConfig      `mapstructure:"chat" yaml:"chat"`
	PayPal    PayPalConfig    `mapstructure:"paypal" yaml:"paypal"`
	S3        S3Config        `mapstructure:"s3" yaml:"s3"`
	Consul    ConsulConfig    `mapstructure:"consul" yaml:"consul"`
}

type ServerConfig struct {
	Name        string `mapstructure:"name" yaml:"name"`
	Port        int    `mapstructure:"port" yaml:"port"`
	Environment string `mapstructure:"environment" yaml:"environment"`
}

type PostgresConfig struct {
	Address  string `mapstructure:"address" yaml:"address"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	DBName   string `mapstructure:"dbname" yaml:"dbname"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Address, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Address      string `mapstructure:"address" yaml:"address"`
	Port         int    `mapstructure:"port" yaml:"port"`
	Password     string `mapstructure:"password" yaml:"password"`
	Database     int    `mapstructure:"database" yaml:"database"`
	RateLimitQPS int    `mapstructure:"rate_limit_qps" yaml:"rate_limit_qps"`
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

type RocketMQConfig struct {
	NameServers   []string `mapstructure:"name_servers" yaml:"name_servers"`
	ConsumerGroup string   `mapstructure:"consumer_group" yaml:"consumer_group"`
	MaxRetries    int      `mapstructure:"max_retries" yaml:"max_retries"`
}

type ProvidersConfig struct {
	OpenAI ProviderConfig `mapstructure:"openai" yaml:"openai"`
	Groq   ProviderConfig `mapstructure:"groq" yaml:"groq"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	ExpireH   int    `mapstructure:"expire_h" yaml:"expire_h"`
}

type ChatConfig struct {
	HistoryLimit       int           `mapstructure:"history_limit" yaml:"history_limit"`
	HistoryTokenBudget int           `mapstructure:"history_token_budget" yaml:"history_token_budget"`
	MaxTokens          int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	HelperMaxTokens    int           `mapstructure:"helper_max_tokens" yaml:"helper_max_tokens"`
	Temperature        float32       `mapstructure:"temperature" yaml:"temperature"`
	PersistTimeout     time.Duration `mapstructure:"persist_timeout" yaml:"persist_timeout"`
}

type PayPalConfig struct {
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
	ClientID  string `mapstructure:"client_id" yaml:"client_id"`
	Secret    string `mapstructure:"secret" yaml:"secret"`
	WebhookID string `mapstructure:"webhook_id" yaml:"webhook_id"`
}

type S3Config struct {
	Bucket        string `mapstructure:"bucket" yaml:"bucket"`
	Region        string `mapstructure:"region" yaml:"region"`
	Endpoint      string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey     string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey     string `mapstructure:"secret_key" yaml:"secret_key"`
	PublicBaseURL string `mapstructure:"public_base_url" yaml:"public_base_url"`
}

type ConsulConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Address    string `mapstructure:"address" yaml:"address"`
	Scheme     string `mapstructure:"scheme" yaml:"scheme"`
	Datacenter string `mapstructure:"datacenter" yaml:"datacenter"`
}

// Load reads config.yaml (if present) and the environment. Env vars use
// underscored section paths, e.g. POSTGRES_ADDRESS, PROVIDERS_OPENAI_API_KEY.
func Load() (*AppConfig, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/code-homie")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine, defaults + env carry it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "code-homie")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")

	v.SetDefault("postgres.address", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "code-homie")
	v.SetDefault("postgres.password", "code-homie-passwd")
	v.SetDefault("postgres.dbname", "code-homie")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("redis.address", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.rate_limit_qps", 2)

	v.SetDefault("rocketmq.name_servers", []string{})
	v.SetDefault("rocketmq.consumer_group", "code-homie-persist")
	v.SetDefault("rocketmq.max_retries", 2)

	v.SetDefault("providers.openai.base_url", "")
	v.SetDefault("providers.groq.base_url", "https://api.groq.com/openai/v1")

	v.SetDefault("auth.jwt_secret", "code_homie_secret")
	v.SetDefault("auth.expire_h", 24)

	v.SetDefault("chat.history_limit", 10)
	v.SetDefault("chat.history_token_budget", 3000)
	v.SetDefault("chat.max_tokens", 2048)
	v.SetDefault("chat.helper_max_tokens", 500)
	v.SetDefault("chat.temperature", 0.7)
	v.SetDefault("chat.persist_timeout", 5*time.Second)

	v.SetDefault("paypal.base_url", "https://api-m.paypal.com")

	v.SetDefault("s3.region", "us-east-1")

	v.SetDefault("consul.enabled", false)
	v.SetDefault("consul.address", "localhost:8500")
	v.SetDefault("consul.scheme", "http")
	v.SetDefault("consul.datacenter", "dc1")
}
