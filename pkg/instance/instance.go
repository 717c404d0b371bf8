// Package instance names the running replica for logs and lock ownership.
package instance

import "os"

const fallbackID = "pep-0"

// GetID returns PEP_INSTANCE_ID, then the hostname, then a fixed default.
func GetID() string {
	if id := os.Getenv("PEP_INSTANCE_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
