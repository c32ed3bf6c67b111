// Package config loads server configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all server configuration.
type Config struct {
	ListenAddr  string
	SnapshotDir string
	Cluster     ClusterConfig
	Animation   AnimationConfig
	Viewport    ViewportConfig
	MaxSessions int
}

// ClusterConfig holds tier thresholds and the popularity-tier radius.
type ClusterConfig struct {
	PopularityMaxZoom float64
	IndividualMinZoom float64
	BaseRadiusPx      float64
}

// AnimationConfig holds particle animation tuning.
type AnimationConfig struct {
	TotalDuration time.Duration
	MinPerSprite  int
	MaxPerSprite  int
	FrameInterval time.Duration
}

// ViewportConfig holds the default camera frame for new sessions.
type ViewportConfig struct {
	Width     float64
	Height    float64
	CenterLat float64
	CenterLng float64
	Zoom      float64
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		ListenAddr:  getEnv("LISTEN_ADDR", ":8000"),
		SnapshotDir: getEnv("SNAPSHOT_DIR", "data/snapshots"),
		MaxSessions: getEnvAsInt("MAX_SESSIONS", 64),
		Cluster: ClusterConfig{
			PopularityMaxZoom: getEnvAsFloat("CLUSTER_POPULARITY_MAX_ZOOM", 11),
			IndividualMinZoom: getEnvAsFloat("CLUSTER_INDIVIDUAL_MIN_ZOOM", 15),
			BaseRadiusPx:      getEnvAsFloat("CLUSTER_BASE_RADIUS_PX", 64),
		},
		Animation: AnimationConfig{
			TotalDuration: getEnvAsDuration("ANIM_TOTAL_DURATION", 1200*time.Millisecond),
			MinPerSprite:  getEnvAsInt("ANIM_MIN_PER_SPRITE", 8),
			MaxPerSprite:  getEnvAsInt("ANIM_MAX_PER_SPRITE", 12),
			FrameInterval: getEnvAsDuration("ANIM_FRAME_INTERVAL", 16*time.Millisecond),
		},
		Viewport: ViewportConfig{
			Width:     getEnvAsFloat("VIEWPORT_WIDTH", 1280),
			Height:    getEnvAsFloat("VIEWPORT_HEIGHT", 800),
			CenterLat: getEnvAsFloat("VIEWPORT_CENTER_LAT", 41.8880),
			CenterLng: getEnvAsFloat("VIEWPORT_CENTER_LNG", -87.6480),
			Zoom:      getEnvAsFloat("VIEWPORT_ZOOM", 12),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
