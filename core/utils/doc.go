// Package utils provides common utility functions for record-sync.
// It holds the loose type conversions needed to turn decoded JSON query rows
// and form values into the plain strings the reconcile engine compares.
package utils
