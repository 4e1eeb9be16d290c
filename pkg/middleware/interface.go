package middleware

import (
	"context"
	"net/http"
)

// Middleware defines the interface for HTTP middleware
type Middleware interface {
	// Handle wraps an HTTP handler with middleware functionality
	Handle(next http.Handler) http.Handler

	// Name returns the middleware name
	Name() string
}

// Chain wraps final with mws, the first middleware being the outermost
func Chain(final http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		final = mws[i].Handle(final)
	}
	return final
}

type routeKey struct{}

// WithRoute records the matched route template for the request metrics
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeKey{}, route)
}

// RouteFromContext returns the route recorded by WithRoute
func RouteFromContext(ctx context.Context) (string, bool) {
	route, ok := ctx.Value(routeKey{}).(string)
	return route, ok && route != ""
}
