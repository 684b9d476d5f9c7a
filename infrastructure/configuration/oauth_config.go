package configuration

import (
	"os"
	"strings"
)

const (
	defaultTwitterTokenURL  = "https://api.twitter.com/2/oauth2/token"
	defaultLinkedInTokenURL = "https://www.linkedin.com/oauth/v2/accessToken"
	defaultGoogleTokenURL   = "https://oauth2.googleapis.com/token"
)

// initOAuth resolves platform OAuth client credentials from config with environment variable fallback.
func initOAuth(C *Config) {
	resolveClient(&C.OAuth.Twitter, "TWITTER", defaultTwitterTokenURL)
	resolveClient(&C.OAuth.LinkedIn, "LINKEDIN", defaultLinkedInTokenURL)
	resolveClient(&C.OAuth.YouTube, "YOUTUBE", defaultGoogleTokenURL)
}

func resolveClient(c *OAuthClient, prefix, defaultTokenURL string) {
	c.ClientID = getConfigValue(c.ClientID, prefix+"_CLIENT_ID", "")
	c.ClientSecret = getConfigValue(c.ClientSecret, prefix+"_CLIENT_SECRET", "")
	c.RedirectURI = getConfigValue(c.RedirectURI, prefix+"_REDIRECT_URL", "")
	c.TokenURL = getConfigValue(c.TokenURL, prefix+"_TOKEN_URL", defaultTokenURL)
}

// Configured reports whether refreshes can be attempted with this client.
func (c OAuthClient) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// getConfigValue gets value from config first, then environment variable, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	// Environment variable takes precedence when provided
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	// Otherwise use config value if set and not a placeholder
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}
