// Package handler holds shared helpers for the JSON API handlers.
package handler

const (
	// APIPath is the prefix for all JSON API routes.
	APIPath = "/api"

	// ErrNilACDFatalLogMsg is used if the app, cfg, db or auth service pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg, db or auth service is nil"
)
