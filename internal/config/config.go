// Package config carrega a configuração do gateway a partir do ambiente.
// Um arquivo .env é carregado quando presente (desenvolvimento local); em
// produção as variáveis vêm direto do ambiente do processo.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Pipeline de despacho.
	BatchSize           int `envconfig:"BATCH_SIZE" default:"100"`
	ConcurrentRequests  int `envconfig:"CONCURRENT_REQUESTS" default:"10"`
	MinWaitTimeMs       int `envconfig:"MIN_WAIT_TIME" default:"5"`
	MaxWaitTimeMs       int `envconfig:"MAX_WAIT_TIME" default:"100"`
	QueueDrainThreshold int `envconfig:"QUEUE_DRAIN_THRESHOLD" default:"1000"`
	MaxQueueSize        int `envconfig:"MAX_QUEUE_SIZE" default:"5000"`

	// Monitor de saúde.
	HealthCheckIntervalMs int `envconfig:"HEALTH_CHECK_INTERVAL" default:"5000"`

	// Colaboradores externos.
	ProcessorDefaultURL  string `envconfig:"PAYMENT_PROCESSOR_DEFAULT" default:"http://payment-processor-default:8080"`
	ProcessorFallbackURL string `envconfig:"PAYMENT_PROCESSOR_FALLBACK" default:"http://payment-processor-fallback:8080"`
	WriterSocketPath     string `envconfig:"WRITER_SOCKET_PATH"`
	ServiceSocketPath    string `envconfig:"SERVICE_SOCKET_PATH"`
	RedisHost            string `envconfig:"REDIS_HOST"`
	RedisPassword        string `envconfig:"REDIS_PASSWORD"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`
}

// Load lê o .env (se existir) e processa as variáveis de ambiente.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("erro ao processar configuração: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE deve ser positivo, recebido %d", c.BatchSize)
	}
	if c.ConcurrentRequests <= 0 {
		return fmt.Errorf("CONCURRENT_REQUESTS deve ser positivo, recebido %d", c.ConcurrentRequests)
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("MAX_QUEUE_SIZE deve ser positivo, recebido %d", c.MaxQueueSize)
	}
	if c.MaxWaitTimeMs < c.MinWaitTimeMs {
		return fmt.Errorf("MAX_WAIT_TIME (%d) não pode ser menor que MIN_WAIT_TIME (%d)", c.MaxWaitTimeMs, c.MinWaitTimeMs)
	}
	return nil
}

func (c *Config) MinWaitTime() time.Duration { return time.Duration(c.MinWaitTimeMs) * time.Millisecond }
func (c *Config) MaxWaitTime() time.Duration { return time.Duration(c.MaxWaitTimeMs) * time.Millisecond }

func (c *Config) HealthCheckInterval() time.Duration {
	return time.Duration(c.HealthCheckIntervalMs) * time.Millisecond
}
