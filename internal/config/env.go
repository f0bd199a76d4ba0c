package config

import "github.com/joho/godotenv"

// LoadEnv loads a .env file from the working directory if present.
// Callers treat os.IsNotExist as a soft failure.
func LoadEnv() error {
	return godotenv.Load()
}
