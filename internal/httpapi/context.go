package httpapi

import (
	"context"
	"net/http"
)

// shutdownCtx ends when the process starts shutting down.
var shutdownCtx = context.Background()

// SetBaseContext installs the process shutdown context. Nil restores
// Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	shutdownCtx = ctx
}

// commandContext is the context blocking handlers (model loads, cancel
// waits) run under. It ends when the client goes away or the server shuts
// down; release must be called when the handler returns.
func commandContext(r *http.Request) (ctx context.Context, release context.CancelFunc) {
	ctx, cancel := context.WithCancel(r.Context())
	stop := context.AfterFunc(shutdownCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
