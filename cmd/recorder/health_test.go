package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rickgao/orderbook-recorder/internal/connection"
	"github.com/rickgao/orderbook-recorder/internal/market"
	"github.com/rickgao/orderbook-recorder/internal/snapshot"
)

type fakeSupervisor struct {
	state connection.State
}

func (f fakeSupervisor) State() connection.State { return f.state }

func (f fakeSupervisor) Stats() connection.Stats {
	return connection.Stats{State: f.state.String()}
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func testHandler(t *testing.T, db pinger, states ...connection.State) http.Handler {
	t.Helper()
	reg, err := market.NewRegistry(market.Instruments{
		"epl-ars-liv": {"Yes": "1", "No": "2"},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	views := make([]supervisorView, len(states))
	for i, st := range states {
		views[i] = fakeSupervisor{state: st}
	}
	return newHealthHandler(views, reg, snapshot.NewProcessor(reg, nil, nil), db)
}

func TestHealthHandler_Status(t *testing.T) {
	tests := []struct {
		name       string
		db         pinger
		states     []connection.State
		wantStatus string
		wantCode   int
	}{
		{
			name:       "all receiving",
			states:     []connection.State{connection.StateReceiving, connection.StateReceiving},
			wantStatus: "healthy",
			wantCode:   http.StatusOK,
		},
		{
			name:       "one reconnecting",
			states:     []connection.State{connection.StateReceiving, connection.StateConnecting},
			wantStatus: "degraded",
			wantCode:   http.StatusOK,
		},
		{
			name:       "none receiving",
			states:     []connection.State{connection.StateDisconnected},
			wantStatus: "unhealthy",
			wantCode:   http.StatusServiceUnavailable,
		},
		{
			name:       "database down",
			db:         fakePinger{err: errors.New("connection refused")},
			states:     []connection.State{connection.StateReceiving},
			wantStatus: "unhealthy",
			wantCode:   http.StatusServiceUnavailable,
		},
		{
			name:       "database up",
			db:         fakePinger{},
			states:     []connection.State{connection.StateReceiving},
			wantStatus: "healthy",
			wantCode:   http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHandler(t, tt.db, tt.states...)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}

			var body struct {
				Status     string                     `json:"status"`
				Components map[string]json.RawMessage `json:"components"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", body.Status, tt.wantStatus)
			}
			if _, ok := body.Components["connections"]; !ok {
				t.Error("connections component missing")
			}
			if _, ok := body.Components["database"]; ok != (tt.db != nil) {
				t.Errorf("database component present = %v, want %v", ok, tt.db != nil)
			}
		})
	}
}

func TestHealthHandler_Instruments(t *testing.T) {
	h := testHandler(t, nil, connection.StateReceiving)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/instruments", nil))

	var body struct {
		Count       int `json:"count"`
		Instruments []struct {
			Market     string `json:"market"`
			Side       string `json:"side"`
			Identifier string `json:"identifier"`
		} `json:"instruments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Count != 2 || len(body.Instruments) != 2 {
		t.Fatalf("count = %d, instruments = %d, want 2", body.Count, len(body.Instruments))
	}
	// Labels are ordered by market then side.
	if body.Instruments[0].Side != "No" || body.Instruments[0].Identifier != "2" {
		t.Errorf("first instrument = %+v, want side No id 2", body.Instruments[0])
	}
}
