package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

const (
	EnvFileName      = ".env"
	EnvLocalFileName = ".env.local"
)

// LoadEnvFiles populates the process environment from dotenv files. Values
// already present in the environment always win. With an explicit path the
// file must exist; otherwise .env.local and .env are read when present,
// .env.local taking precedence.
func LoadEnvFiles(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	_ = godotenv.Load(EnvLocalFileName)
	_ = godotenv.Load(EnvFileName)
	return nil
}
