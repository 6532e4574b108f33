package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// Secrets are read from the environment so they can stay out of the config
// file. Set values override the file.
type Secrets struct {
	DBPassword  string `env:"ACROSSREC_DB_PASSWORD"`
	InfluxToken string `env:"ACROSSREC_INFLUX_TOKEN"`
	APIKey      string `env:"ACROSSREC_API_KEY"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// applySecrets copies every non-empty secret into viper.
func applySecrets() error {
	var s Secrets
	if err := ParseEnv(&s); err != nil {
		return err
	}
	for key, v := range map[string]string{
		"db.password":  s.DBPassword,
		"influx.token": s.InfluxToken,
		"api.apiKey":   s.APIKey,
	} {
		if v != "" {
			viper.Set(key, v)
		}
	}
	return nil
}
