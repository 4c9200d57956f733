package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateAllowedOrigin checks an entry of server.allowed_origins: an http or
// https scheme and a host, with nothing after it.
func ValidateAllowedOrigin(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid origin: %w", err)
	}

	// Only allow http/https schemes to prevent protocol handlers
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid origin scheme: %s (only http/https allowed)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("origin must have a valid hostname")
	}
	if parsed.User != nil {
		return fmt.Errorf("origin must not carry credentials")
	}
	if (parsed.Path != "" && parsed.Path != "/") || parsed.RawQuery != "" || parsed.Fragment != "" {
		return fmt.Errorf("origin %s must not have a path, query or fragment", rawURL)
	}
	if strings.ContainsAny(rawURL, " \n\r\\") {
		return fmt.Errorf("origin contains whitespace or backslashes")
	}

	return nil
}

// ValidateOrigin validates a browser Origin header for websocket upgrades.
// The origin must use http or https and its host:port must be one of
// allowedHosts.
func ValidateOrigin(origin string, allowedHosts []string) error {
	if origin == "" {
		return fmt.Errorf("origin header is required")
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin format: %w", err)
	}

	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return fmt.Errorf("invalid origin scheme '%s': only http and https are allowed", originURL.Scheme)
	}

	for _, allowed := range allowedHosts {
		if originURL.Host == allowed {
			return nil
		}
	}

	return fmt.Errorf("origin '%s' is not in allowed origins list", origin)
}
