package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	TrackMint TrackMintConfig `yaml:"trackmint"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type KafkaConfig struct {
	Host                    string `yaml:"host"`
	Port                    int    `yaml:"port"`
	TrackingIssuedTopicName string `yaml:"tracking_issued_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TrackMintConfig struct {
	HTTPAddr           string `yaml:"http_addr"`
	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`

	// Ключ общего счётчика в Redis. Несколько инстансов сервиса (например,
	// по тенанту) разводятся отдельными ключами и топиками.
	CounterKey string `yaml:"counter_key"`

	AdapterTimeoutSeconds   int `yaml:"adapter_timeout_seconds"`
	CurrentStatusTTLSeconds int `yaml:"current_status_ttl_seconds"`
	RateLimitPerMinute      int `yaml:"rate_limit_per_minute"`

	DestinationSlugUnique bool `yaml:"destination_slug_unique"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
