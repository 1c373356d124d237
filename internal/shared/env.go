package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the TOML configuration.
const (
	EnvAPIURL        = "JUKEBOX_API_URL"
	EnvStorageDriver = "JUKEBOX_STORAGE_DRIVER"
	EnvDBPath        = "JUKEBOX_DB_PATH"
	EnvRedisAddr     = "JUKEBOX_REDIS_ADDR"
	EnvRedisDB       = "JUKEBOX_REDIS_DB"
	EnvLogLevel      = "JUKEBOX_LOG_LEVEL"
	EnvSessionSecret = "JUKEBOX_SESSION_SECRET"
)

// LoadEnvFile loads variables from the dotenv files into the process environment.
//
// Variables already set are not overridden and missing files are skipped.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, p, err)
		}
	}
	return nil
}

// ApplyEnv overlays JUKEBOX_* environment variables onto c.
func ApplyEnv(c *Config) error {
	setString(&c.API.BaseURL, EnvAPIURL)
	setString(&c.Storage.Driver, EnvStorageDriver)
	setString(&c.Database.Path, EnvDBPath)
	setString(&c.Redis.Addr, EnvRedisAddr)
	setString(&c.Log.Level, EnvLogLevel)
	setString(&c.Session.Secret, EnvSessionSecret)

	if v, ok := os.LookupEnv(EnvRedisDB); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, EnvRedisDB, v)
		}
		c.Redis.DB = db
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
