package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultWebListenAddr = ":8081"
	defaultEnvironment   = "dev"
	defaultMarker        = "/v1/"
)

type Config struct {
	Web     WebConfig     `yaml:"web"`
	Capture CaptureConfig `yaml:"capture"`
	Keys    KeysConfig    `yaml:"keys"`
}

type WebConfig struct {
	ListenAddr  string   `yaml:"listen_addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// CaptureConfig описывает фильтр захватываемых запросов
type CaptureConfig struct {
	Markers []string `yaml:"markers"`
}

// KeysConfig - ключи шифрования по окружениям
type KeysConfig struct {
	File               string            `yaml:"file"`
	DefaultEnvironment string            `yaml:"default_environment"`
	Environments       map[string]string `yaml:"environments"`
}

// Load reads .env (optional) and the process environment. Keys come from
// KEYS_FILE when set, otherwise from KEY_<ENV> variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Web: WebConfig{
			ListenAddr:  getEnv("WEB_LISTEN_ADDR", defaultWebListenAddr),
			CORSOrigins: getEnvList("WEB_CORS_ORIGINS", []string{"*"}),
		},
		Capture: CaptureConfig{
			Markers: getEnvList("CAPTURE_MARKERS", []string{defaultMarker}),
		},
		Keys: KeysConfig{
			File:               os.Getenv("KEYS_FILE"),
			DefaultEnvironment: getEnv("KEYS_DEFAULT_ENV", defaultEnvironment),
			Environments:       envKeys(),
		},
	}

	if cfg.Keys.File != "" {
		kf, err := LoadKeyFile(cfg.Keys.File)
		if err != nil {
			return nil, err
		}
		cfg.Keys.Environments = kf.Environments
		if kf.Default != "" && os.Getenv("KEYS_DEFAULT_ENV") == "" {
			cfg.Keys.DefaultEnvironment = kf.Default
		}
	}

	if len(cfg.Keys.Environments) == 0 {
		return nil, errors.New("no encryption keys configured: set KEYS_FILE or KEY_<ENV> variables")
	}

	return cfg, nil
}

// envKeys collects KEY_DEV=... style variables into an environment map.
func envKeys() map[string]string {
	keys := make(map[string]string)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, "KEY_") || value == "" {
			continue
		}
		env := strings.ToLower(strings.TrimPrefix(name, "KEY_"))
		if env == "" {
			continue
		}
		keys[env] = value
	}
	return keys
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
