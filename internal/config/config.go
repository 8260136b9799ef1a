// Package config loads the service configuration from the environment.
package config

import (
	"outreach/pkg/config"
	"outreach/pkg/llm"
)

// Config stores environment configuration for the outreach service.
type Config struct {
	Port        string
	DatabaseURL string

	LLM llm.Config

	// Browser platform credentials. Publishing to a platform whose
	// credentials are missing fails with an authentication error at
	// call time rather than at startup.
	LinkedInEmail    string
	LinkedInPassword string
	TwitterUsername  string
	TwitterPassword  string

	YouTubeOAuthToken string

	BrowserHeadless    bool
	BrowserUserDataDir string

	MaxToolRounds int

	BrandCompany string
	BrandProduct string
	BrandMission string
}

// LoadConfig loads the service configuration from environment variables.
func LoadConfig() Config {
	return Config{
		Port:        config.GetEnv("PORT", "18030"),
		DatabaseURL: config.RequireEnv("DATABASE_URL"),

		LLM: llm.LoadConfig(),

		LinkedInEmail:    config.GetEnv("LINKEDIN_EMAIL", ""),
		LinkedInPassword: config.GetEnv("LINKEDIN_PASSWORD", ""),
		TwitterUsername:  config.GetEnv("TWITTER_USERNAME", ""),
		TwitterPassword:  config.GetEnv("TWITTER_PASSWORD", ""),

		YouTubeOAuthToken: config.GetEnv("YOUTUBE_OAUTH_TOKEN", ""),

		BrowserHeadless:    config.GetEnvBool("BROWSER_HEADLESS", false),
		BrowserUserDataDir: config.GetEnv("BROWSER_USER_DATA_DIR", ""),

		MaxToolRounds: config.GetEnvInt("MAX_TOOL_ROUNDS", 8),

		BrandCompany: config.GetEnv("BRAND_COMPANY", "Nebula Metrics"),
		BrandProduct: config.GetEnv("BRAND_PRODUCT", "Pulseboard"),
		BrandMission: config.GetEnv("BRAND_MISSION", "We help engineering teams see what their systems are doing in real time."),
	}
}
