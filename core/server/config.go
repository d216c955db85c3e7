package server

import "fmt"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// BodyLimitMB caps request bodies, which bounds workbook uploads.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"16"`
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

// BodyLimit returns the request body limit in bytes.
func (c Config) BodyLimit() int {
	if c.BodyLimitMB <= 0 {
		return 16 * 1024 * 1024
	}
	return c.BodyLimitMB * 1024 * 1024
}

// Validate checks the settings required to serve the API.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.ApiKey == "" {
		return fmt.Errorf("server api_key is required")
	}
	return nil
}
