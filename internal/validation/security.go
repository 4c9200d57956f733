// Package validation provides the input checks shared by the configuration
// layer and the preview server: file system paths, listen hosts and browser
// origins.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// shellChars are rejected in paths and hosts. They never occur in the values
// webbuilder expects and usually mean a pasted command line.
var shellChars = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}

var hostChars = append([]string{"\\", " ", "/"}, shellChars...)

// ValidatePath validates a relative file path to prevent path traversal.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}

	cleanPath := filepath.Clean(path)
	if cleanPath == ".." || strings.HasPrefix(filepath.ToSlash(cleanPath), "../") ||
		strings.Contains(filepath.ToSlash(cleanPath), "/../") {
		return fmt.Errorf("path traversal detected: %s", path)
	}

	for _, char := range shellChars {
		if strings.Contains(path, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}

// ValidateHost checks a listen host name or address.
func ValidateHost(host string) error {
	if strings.TrimSpace(host) == "" {
		return fmt.Errorf("host cannot be empty")
	}

	for _, char := range hostChars {
		if strings.Contains(host, char) {
			return fmt.Errorf("host contains dangerous character: %q", char)
		}
	}

	return nil
}
