package runtime

import (
	"context"
	"os/signal"
	"syscall"
)

// SignalContext cancels on SIGINT/SIGTERM, driving graceful shutdown of the
// HTTP server and the background loops.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
