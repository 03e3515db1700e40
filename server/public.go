package server

import (
	"net/http"
)

// NewPublic serves the form endpoints.
func NewPublic(config Config, handler http.Handler) *Server {
	return newServer("public", config, handler)
}
