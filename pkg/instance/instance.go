package instance

import (
	"os"

	"github.com/angelmondragon/storerate-backend/pkg/env"
)

// GetID returns the process instance identifier used in log fields. It checks
// STORERATE_INSTANCE_ID, then the container hostname, and falls back to "local".
func GetID() string {
	if id := env.Get("STORERATE_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
