package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev
	"https://atelier.gallery",
	"https://app.atelier.gallery",
}

// CORS returns middleware that applies the API's allowed origin policy.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Atelier-User-Id", "X-Atelier-Request-Id"},
		ExposedHeaders:   []string{"X-Atelier-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
