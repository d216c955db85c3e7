// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key header) protecting every API route.
//   - rayid: assigns each request a ray id, stored in fiber locals and echoed
//     in the X-Ray-ID response header, so logger.WithRayID can tag request logs.
//
// RayID is registered first so every later log line carries the id.
package middleware
