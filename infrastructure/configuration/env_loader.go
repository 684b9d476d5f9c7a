package configuration

import (
	"errors"
	"io/fs"
	"os"

	"social-scheduler/infrastructure/logger"

	"github.com/joho/godotenv"
)

// LoadEnvFromFile loads KEY=VALUE pairs from one or more files (e.g., config.env, .env).
// Missing files are skipped and existing env vars win. It returns the keys that were set.
func LoadEnvFromFile(paths ...string) []string {
	var loaded []string
	for _, p := range paths {
		values, err := godotenv.Read(p)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.GetLogger().WithField("error", err).WithField("file", p).Warn("Cannot parse env file")
			}
			continue
		}
		for key, val := range values {
			if _, exists := os.LookupEnv(key); exists {
				continue
			}
			if err := os.Setenv(key, val); err == nil {
				loaded = append(loaded, key)
			}
		}
	}
	return loaded
}
