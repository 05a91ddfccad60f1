package env

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// LoadEnv reads .env files into the process environment. Variables that are
// already set win over the file.
func LoadEnv(logger *zap.Logger, files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logger.Debug("no .env file found, assuming environment variables are set directly", zap.Error(err))
	}
}

func MustGetEnv(logger *zap.Logger, key string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		logger.Fatal("environment variable not set", zap.String("key", key))
	}
	return val
}

// GetEnv returns the value of key, or def when it is unset or empty.
func GetEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return def
}

func GetFloat(key string, def float64) (float64, error) {
	val := GetEnv(key, "")
	if val == "" {
		return def, nil
	}
	return strconv.ParseFloat(val, 64)
}

func GetInt(key string, def int) (int, error) {
	val := GetEnv(key, "")
	if val == "" {
		return def, nil
	}
	return strconv.Atoi(val)
}

func GetBool(key string, def bool) (bool, error) {
	val := GetEnv(key, "")
	if val == "" {
		return def, nil
	}
	return strconv.ParseBool(val)
}

// GetDuration accepts Go duration syntax ("1.4s", "900ms").
func GetDuration(key string, def time.Duration) (time.Duration, error) {
	val := GetEnv(key, "")
	if val == "" {
		return def, nil
	}
	return time.ParseDuration(val)
}
