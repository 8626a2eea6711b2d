package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rickgao/orderbook-recorder/internal/connection"
	"github.com/rickgao/orderbook-recorder/internal/market"
	"github.com/rickgao/orderbook-recorder/internal/snapshot"
)

// pinger is satisfied by *pgxpool.Pool.
type pinger interface {
	Ping(ctx context.Context) error
}

// supervisorView is the part of a supervisor the health endpoint reads.
type supervisorView interface {
	State() connection.State
	Stats() connection.Stats
}

// newHealthHandler creates the HTTP handler for health checks. db may be nil.
func newHealthHandler(supervisors []supervisorView, registry *market.Registry, proc *snapshot.Processor, db pinger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		// A connection between sessions is expected; none receiving is not.
		conns := make([]connection.Stats, 0, len(supervisors))
		receiving := 0
		for _, s := range supervisors {
			if s.State() == connection.StateReceiving {
				receiving++
			}
			conns = append(conns, s.Stats())
		}
		health.Components["connections"] = conns
		switch {
		case receiving == 0:
			health.Status = "unhealthy"
		case receiving < len(supervisors):
			health.Status = "degraded"
		}

		health.Components["processor"] = proc.Stats()

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			if err := db.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["database"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["database"] = "connected"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/instruments", func(w http.ResponseWriter, r *http.Request) {
		type instrument struct {
			Market     string `json:"market"`
			Side       string `json:"side"`
			Identifier string `json:"identifier"`
		}

		labels := registry.Labels()
		out := make([]instrument, 0, len(labels))
		for _, l := range labels {
			id, _ := registry.Identifier(l)
			out = append(out, instrument{Market: l.Market, Side: l.Side, Identifier: id})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"count":       len(out),
			"instruments": out,
		})
	})

	return mux
}
