package middleware

import (
	"net/http"
)

// Cors mirrors the permissive browser setup used by the frontend: any origin
// may call the API, credentials travel via the Authorization header.
func Cors() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowOrigin := origin
			if allowOrigin == "" {
				allowOrigin = "*"
			}

			w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			w.Header().Set("Access-Control-Allow-Headers",
				"Accept, Content-Type, Content-Length, Accept-Encoding, Authorization",
			)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT")

			next.ServeHTTP(w, r)
		})
	}
}
