package config

import (
	"fmt"

	"github.com/spf13/viper"
)

func LoadScraperConfig(filename string) (*ScraperConfig, error) {
	viper.SetConfigName(filename)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	var config ScraperConfig
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("cannot read the file %w", err)
	}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error reading the config file %w", err)
	}
	if config.Region == "" {
		config.Region = "UK"
	}
	if config.Workers <= 0 {
		config.Workers = 3
	}
	return &config, nil
}

func GetDefaultConfig() *ScraperConfig {
	return &ScraperConfig{
		Region:  "UK",
		Workers: 3,
		Redis: RedisConfig{
			Host:    "localhost:6379",
			Enabled: true,
		},
		Mongo: MongoConfig{
			URI:         "mongodb://localhost:27017",
			DBName:      "tesco_scraper",
			RecordsColl: "records",
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5433,
			User:     "admin",
			Password: "secret",
			DBName:   "scraper_runs_db",
			SSL:      false,
		},
	}
}
