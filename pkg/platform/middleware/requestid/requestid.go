// Package requestid assigns a correlation id to each request, honoring one
// supplied by an upstream proxy.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"docket/pkg/requestcontext"
)

// Header is the wire header carrying the correlation id.
const Header = "X-Request-Id"

// Middleware stores the inbound request id in the context, generating a
// fresh one when the header is absent, and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(Header)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(Header, reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
