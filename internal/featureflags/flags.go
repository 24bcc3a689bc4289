package featureflags

import (
	"os"
	"strings"
)

// StaleJobCancel turns on the background sweeper that cancels open jobs
// nobody accepted within the configured age. Off by default.
const StaleJobCancel = "stale_job_cancel"

// Enabled returns true if a flag is enabled via environment variable.
// Flags are read from env as FLAG_<NAME>=true/1/yes (case-insensitive)
func Enabled(name string) bool {
	v := os.Getenv("FLAG_" + strings.ToUpper(name))
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
