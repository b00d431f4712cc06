package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"extsort/pkg/sorterrors"
)

// Config - корневая структура конфигурации приложения.
// yaml и validate теги для парсинга и валидации.

type Config struct {
	Logger LoggerConfig `yaml:"logger" validate:"required"`
	Server ServerConfig `yaml:"http-server"`
	Sort   SortConfig   `yaml:"sort" validate:"required"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	JSON  bool   `yaml:"json"`
}

type ServerConfig struct {
	Port              int           `yaml:"port" validate:"min=1,max=65535"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`

	// ScratchDir holds run files and result files for requests served over
	// HTTP. CLI invocations ignore it: their runs live next to the output.
	ScratchDir string `yaml:"scratch_dir"`
}

type SortConfig struct {
	// BatchSize is the number of values sorted in memory before the batch
	// is spilled as one run. It counts elements, not bytes.
	BatchSize int `yaml:"batch_size" validate:"required,min=1"`

	// Workers is the number of concurrent sort-and-spill workers.
	// 1 keeps the pipeline fully sequential.
	Workers int `yaml:"workers" validate:"min=1"`
}

// Validate rejects a configuration the pipeline must not run with.
func (c SortConfig) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", sorterrors.ErrConfig, c.BatchSize)
	}
	return nil
}

// Default returns a baseline development config.
func Default() Config {
	return Config{
		Logger: LoggerConfig{
			Level: "INFO",
			JSON:  false,
		},
		Server: ServerConfig{
			Port:              8080,
			ReadHeaderTimeout: time.Second,
			ScratchDir:        "./data",
		},
		Sort: SortConfig{
			BatchSize: 1 << 20,
			Workers:   1,
		},
	}
}

// Load reads the YAML config at path, falling back to Default() when the
// file does not exist, then applies environment overrides. A .env file in
// the working directory is honored.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// default config stands
	case err != nil:
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	_ = godotenv.Load(".env")
	applyEnv(&cfg)

	return cfg, nil
}

// applyEnv overrides config fields from EXTSORT_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("EXTSORT_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sort.BatchSize = n
		}
	}
	if v := os.Getenv("EXTSORT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sort.Workers = n
		}
	}
	if v := os.Getenv("EXTSORT_HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("EXTSORT_SCRATCH_DIR"); v != "" {
		cfg.Server.ScratchDir = v
	}
	if v := os.Getenv("EXTSORT_LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
}
