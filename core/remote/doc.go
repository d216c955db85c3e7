// Package remote is the client for the remote record store.
//
// The store exposes two APIs that record-sync consumes:
//   - the query API: POST /api/query/v1 with a SELECT-style statement,
//     answered one page at a time (currentPage, lastPage, totalObjectCount);
//   - the data API: PATCH, PUT and DELETE against /api/data/v4/{collection}/bulk
//     carrying many records of one collection per request.
//
// # Sessions
//
// Every request is authorized with a bearer token and scoped to an account
// and company. SessionCache keeps the current Session until it is within
// DefaultExpiryMargin of expiry, refreshes it through a TokenSource (client
// credentials by default) and coalesces concurrent refreshes. A 401 response
// invalidates the cache and the request is retried once.
//
// # Errors
//
// Non-2xx responses are returned as *StatusError; StatusCode extracts the
// status from any wrapped error.
//
// # Usage
//
//	client := remote.NewClient(cfg.Remote, logger)
//	page, err := client.Query(ctx, remote.Query{Statement: "SELECT ...", DTOs: "UdoValue.9"}, 1, 1000)
package remote
