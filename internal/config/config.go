package config

import (
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Listen string `yaml:"listen"`
	Server Server `yaml:"server"`
}

type Server struct {
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	NotifyWebhook string `yaml:"notifyWebhook"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Listen == "" {
		config.Listen = ":8000"
	}

	return config, nil
}
