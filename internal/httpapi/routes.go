package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(src StateSource) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/state", GetState(src))
	r.Get("/hands", GetHands(src))
	r.Get("/components/{id}", GetComponent(src))
	return r
}
