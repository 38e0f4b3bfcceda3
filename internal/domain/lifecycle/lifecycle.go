// Package lifecycle holds timing constants shared by fx start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds a single start or stop hook (pings, graceful shutdown, client close).
const DefaultTimeout = 10 * time.Second
