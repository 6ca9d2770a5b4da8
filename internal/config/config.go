package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string

	StorageBackend string
	DBPath         string
	BoltPath       string
	StoreDir       string
	DatabaseURL    string
	IDPolicy       string

	ImagePath    string
	CarouselFile string

	VisionBackend string
	OllamaHost    string
	OllamaModel   string
	ClaudeAPIKey  string
	ClaudeModel   string

	TelegramToken  string
	TelegramChatID int64

	// Device is nil when no device coordinates are configured.
	Device *Point
	// Shop is nil when the shop distance should not be reported.
	Shop *Point

	LogLevel string
	LogFile  string
}

type Point struct {
	Lat, Lon float64
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		StorageBackend: getEnv("STORAGE_BACKEND", "sqlite"),
		DBPath:         getEnv("DB_PATH", "/data/cafeliz.db"),
		BoltPath:       getEnv("BOLT_PATH", "/data/cafeliz.bolt"),
		StoreDir:       getEnv("STORE_DIR", "/data/store"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		IDPolicy:       getEnv("ID_POLICY", "monotonic"),
		ImagePath:      getEnv("IMAGE_PATH", "/data/images"),
		CarouselFile:   getEnv("CAROUSEL_FILE", ""),
		VisionBackend:  getEnv("VISION_BACKEND", "none"),
		OllamaHost:     getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:    getEnv("OLLAMA_MODEL", "llava"),
		ClaudeAPIKey:   getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:    getEnv("CLAUDE_MODEL", "claude-3-5-haiku-latest"),
		TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
	}

	if raw := getEnv("TELEGRAM_CHAT_ID", ""); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
		cfg.TelegramChatID = id
	}

	var err error
	if cfg.Device, err = getPoint("DEVICE_LAT", "DEVICE_LON", "", ""); err != nil {
		return nil, err
	}
	if cfg.Shop, err = getPoint("SHOP_LAT", "SHOP_LON", "-6.8547", "-35.4900"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getPoint returns nil when either coordinate is empty.
func getPoint(latKey, lonKey, latDef, lonDef string) (*Point, error) {
	rawLat, rawLon := getEnv(latKey, latDef), getEnv(lonKey, lonDef)
	if rawLat == "" || rawLon == "" {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", latKey, rawLat, err)
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", lonKey, rawLon, err)
	}
	return &Point{Lat: lat, Lon: lon}, nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
