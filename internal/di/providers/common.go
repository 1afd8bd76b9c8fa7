package providers

import "time"

// shutdownTimeout bounds graceful shutdown of the HTTP server. The
// store and engine close after it returns, so in-flight requests get
// the whole window.
const shutdownTimeout = 15 * time.Second
