package remote

import (
	"fmt"
	"strings"
)

// Config holds configuration for the remote record store API.
type Config struct {
	// BaseURL is the scheme and host of the query and data APIs.
	BaseURL string `mapstructure:"base_url" default:"https://eu.coresuite.com"`
	// TokenURL is the OAuth token endpoint used for client credentials.
	TokenURL string `mapstructure:"token_url" default:"https://eu.coresuite.com/api/oauth2/v1/token"`
	// ClientID identifies this tool towards the store (X-Client-ID).
	ClientID string `mapstructure:"client_id" default:"record-sync"`
	// ClientSecret is the OAuth client secret.
	ClientSecret string `mapstructure:"client_secret" default:""`
	// ClientVersion is sent as X-Client-Version.
	ClientVersion string `mapstructure:"client_version" default:"1.0.0"`
	// Account is the account name every request is scoped to.
	Account string `mapstructure:"account" default:""`
	// Company is the company id every request is scoped to.
	Company string `mapstructure:"company" default:""`
	// PageSize is the query page size, clamped to [1, MaxPageSize].
	PageSize int `mapstructure:"page_size" default:"1000"`
	// TimeoutSeconds bounds every HTTP round trip.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
}

// Validate checks the settings required to reach the store.
func (c Config) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"base_url", c.BaseURL},
		{"token_url", c.TokenURL},
		{"client_id", c.ClientID},
		{"client_secret", c.ClientSecret},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("remote %s required", strings.Join(missing, ", "))
	}
	return nil
}
