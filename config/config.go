package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultMaxRange      = 10.0
	defaultScoringCutoff = 10.0
	defaultCaptureWidth  = 1920
	defaultCaptureHeight = 1080
)

type Config struct {
	TelegramToken string
	ScenePath     string
	LogLevel      string

	MaxRange      float64 // длина луча камеры
	ScoringCutoff float64 // граница начисления очков за расстояние

	CaptureWidth  int
	CaptureHeight int
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		ScenePath:     envOr("INSPECT_SCENE", "scene.yaml"),
		LogLevel:      envOr("INSPECT_LOG_LEVEL", "info"),
	}

	var err error
	if cfg.MaxRange, err = envFloat("INSPECT_MAX_RANGE", defaultMaxRange); err != nil {
		return nil, err
	}
	if cfg.ScoringCutoff, err = envFloat("INSPECT_SCORING_CUTOFF", defaultScoringCutoff); err != nil {
		return nil, err
	}
	if cfg.CaptureWidth, err = envInt("INSPECT_CAPTURE_WIDTH", defaultCaptureWidth); err != nil {
		return nil, err
	}
	if cfg.CaptureHeight, err = envInt("INSPECT_CAPTURE_HEIGHT", defaultCaptureHeight); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", key, v)
	}
	return f, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
