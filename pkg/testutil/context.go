package testutil

import (
	"net/http"
	"time"

	"docket/internal/identity"
	"docket/pkg/requestcontext"
)

// WithActor injects an authenticated identity into the request context,
// simulating what the auth middleware does for authenticated requests.
func WithActor(req *http.Request, actor identity.Identity) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithTime pins the request-scoped time, simulating the requesttime
// middleware.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
