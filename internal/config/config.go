package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the social metrics fetcher.
type Config struct {
	// Credentials and upstream endpoints
	YoutubeAPIKey  string `mapstructure:"youtube_api_key"`
	YoutubeBaseURL string `mapstructure:"youtube_base_url"`
	ScraperBaseURL string `mapstructure:"scraper_base_url"`

	// Record store location
	DatabasePath string `mapstructure:"database_path"`

	// Subjects to fetch
	TwitterUsernames  []string `mapstructure:"twitter_usernames"`
	YoutubeChannelIDs []string `mapstructure:"youtube_channel_ids"`
	YoutubeHandles    []string `mapstructure:"youtube_handles"`

	// Fetch bounds and cache freshness windows
	MaxTweets         int           `mapstructure:"max_tweets"`
	YoutubeMaxResults int           `mapstructure:"youtube_max_results"`
	TwitterCacheTTL   time.Duration `mapstructure:"twitter_cache_ttl"`
	YoutubeCacheTTL   time.Duration `mapstructure:"youtube_cache_ttl"`

	// Placeholders used when upstream payloads lack media
	DefaultImageURL string `mapstructure:"default_image_url"`
	DefaultVideoURL string `mapstructure:"default_video_url"`
}

// Load reads configuration from environment variables and optional config file.
// Environment variables take precedence over config file values. Subject
// lists (usernames, channel ids, handles) come from the config file.
//
// Expected environment variables:
//   - YOUTUBE_API_KEY (required when YouTube subjects are configured)
//   - SCRAPER_BASE_URL (required when Twitter subjects are configured)
//   - YOUTUBE_BASE_URL (optional, defaults to the public Data API v3)
//   - DATABASE_PATH (optional, defaults to social_metrics.db)
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("") // No prefix, use full names
	v.AutomaticEnv()

	v.SetDefault("youtube_base_url", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("database_path", "social_metrics.db")
	v.SetDefault("max_tweets", 20)
	v.SetDefault("youtube_max_results", 10)
	v.SetDefault("twitter_cache_ttl", "24h")
	v.SetDefault("youtube_cache_ttl", "24h")
	v.SetDefault("default_image_url", "https://i.ytimg.com/img/no_thumbnail.jpg")
	v.SetDefault("default_video_url", "")

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.socialmetrics")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	v.BindEnv("youtube_api_key", "YOUTUBE_API_KEY")
	v.BindEnv("youtube_base_url", "YOUTUBE_BASE_URL")
	v.BindEnv("scraper_base_url", "SCRAPER_BASE_URL")
	v.BindEnv("database_path", "DATABASE_PATH")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Required settings depend on which subjects are configured
	var missing []string
	if len(config.TwitterUsernames) > 0 && config.ScraperBaseURL == "" {
		missing = append(missing, "SCRAPER_BASE_URL")
	}
	if (len(config.YoutubeChannelIDs) > 0 || len(config.YoutubeHandles) > 0) && config.YoutubeAPIKey == "" {
		missing = append(missing, "YOUTUBE_API_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return config, nil
}
