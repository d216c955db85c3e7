// Package server holds the HTTP server configuration.
//
// The Config struct defines the listen port, the API key protecting every
// route except the Swagger UI, and the request body limit that bounds
// workbook uploads. Validate is called by the start command before the
// server begins listening.
package server
