package routes

import (
	"mime"
	"net/http"

	"github.com/giannis84/recipe-favourites/internal/logging"
)

// jsonBodyOnly drops the body of requests not declared as JSON, so the handler sees an empty object.
func jsonBodyOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != jsonContentType {
			logging.Log(r.Context()).Layer("routes").Str("content_type", r.Header.Get("Content-Type")).
				Warn("ignoring non-JSON request body")
			r.Body.Close()
			r.Body = http.NoBody
		}
		next.ServeHTTP(w, r)
	})
}
