package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

// Config carries everything the facade reads from the environment.
// A missing credential does not fail startup; the affected platform
// just degrades to its fallback source.
type Config struct {
	AppPort string
	WebRoot string

	// Twitter bearer tokens, one per free-tier key. Each key gets the
	// same monthly quota.
	TwitterBearerTokens []string
	TwitterKeyQuota     int

	ParseBotAPIKey    string
	ParseBotScraperID string

	YouTubeAPIKey string

	InstagramAccessToken string
	InstagramSessionID   string
}

const maxTwitterKeys = 5

func Load() *Config {
	cfg := &Config{
		AppPort:              getEnv("APP_PORT", "4000"),
		WebRoot:              getEnv("WEB_ROOT", ""),
		TwitterKeyQuota:      getEnvInt("TWITTER_KEY_QUOTA", 100),
		ParseBotAPIKey:       getEnv("PARSEBOT_API_KEY", ""),
		ParseBotScraperID:    getEnv("PARSEBOT_SCRAPER_ID", ""),
		YouTubeAPIKey:        getEnv("YOUTUBE_API_KEY", ""),
		InstagramAccessToken: getEnv("INSTAGRAM_ACCESS_TOKEN", ""),
		InstagramSessionID:   getEnv("IG_SESSION_ID", ""),
	}

	for i := 1; i <= maxTwitterKeys; i++ {
		if token := os.Getenv(fmt.Sprintf("TWITTER_BEARER_TOKEN_%d", i)); token != "" {
			cfg.TwitterBearerTokens = append(cfg.TwitterBearerTokens, token)
		}
	}

	log.Printf("config loaded: port=%s twitter_keys=%d parsebot=%t youtube_key=%t ig_token=%t",
		cfg.AppPort, len(cfg.TwitterBearerTokens), cfg.ParseBotAPIKey != "",
		cfg.YouTubeAPIKey != "", cfg.InstagramAccessToken != "")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("warn: invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}
