package ratelimit

import (
	"net/http"
	"strings"
)

// unlimited marks an endpoint that is never rate limited
var unlimited = EndpointConfig{}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Exact matches win over prefix matches; a config path ending in "/" matches any
// path below it. Health checks and CORS preflights are unlimited. Returns nil when
// nothing matches.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if (path == "/health" && method == http.MethodGet) || method == http.MethodOptions {
		u := unlimited
		return &u
	}

	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}

	for i := range configs {
		cfg := &configs[i]
		if cfg.Method == method && strings.HasSuffix(cfg.Path, "/") && strings.HasPrefix(path, cfg.Path) {
			return cfg
		}
	}

	return nil
}
