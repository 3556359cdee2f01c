package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

type ctxKey int

const requestIDKey ctxKey = 1

const requestIDHeader = "X-Request-ID"

// ids from upstream proxies end up in log lines; anything else is replaced
var reRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID reuses a well-formed incoming X-Request-ID or mints a UUID.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(requestIDHeader)
			if !reRequestID.MatchString(rid) {
				rid = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, rid)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, rid)))
		})
	}
}

func GetRequestID(r *http.Request) string {
	rid, _ := r.Context().Value(requestIDKey).(string)
	return rid
}
