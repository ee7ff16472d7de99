package httpapi

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/DoyleJ11/tablesim-client/internal/protocol"
	"github.com/DoyleJ11/tablesim-client/internal/session"
	"github.com/go-chi/chi/v5"
)

// StateSource answers with the session's current view.
type StateSource interface {
	State(ctx context.Context) (session.View, error)
}

const stateTimeout = 2 * time.Second

func currentView(w http.ResponseWriter, r *http.Request, src StateSource) (session.View, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), stateTimeout)
	defer cancel()
	v, err := src.State(ctx)
	if err != nil {
		http.Error(w, "session unavailable", http.StatusServiceUnavailable)
		return session.View{}, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func GetState(src StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := currentView(w, r, src)
		if !ok {
			return
		}
		writeJSON(w, v)
	}
}

func GetHands(src StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := currentView(w, r, src)
		if !ok {
			return
		}
		hands := make([]protocol.Hand, 0, len(v.Snapshot.Hands))
		for _, id := range slices.Sorted(maps.Keys(v.Snapshot.Hands)) {
			hands = append(hands, v.Snapshot.Hands[id])
		}
		writeJSON(w, struct {
			Hands []protocol.Hand `json:"hands"`
		}{Hands: hands})
	}
}

func GetComponent(src StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "bad component id", http.StatusBadRequest)
			return
		}
		v, ok := currentView(w, r, src)
		if !ok {
			return
		}
		c, found := v.Snapshot.Components[id]
		if !found {
			http.Error(w, "component not found", http.StatusNotFound)
			return
		}
		writeJSON(w, c)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
