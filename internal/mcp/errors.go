// Package mcp exposes the service catalogue as Model Context Protocol tools
// over stdio, so assistants can list and run text services.
package mcp

import "errors"

// ErrMissingCatalogue is returned when no catalogue is provided.
var ErrMissingCatalogue = errors.New("mcp: service catalogue is required")
