// Package lifecycle holds shared constants for component start/stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds startup pings and graceful shutdown of managed
// components.
const DefaultTimeout = 10 * time.Second
