package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dokzlo13/ledd/internal/bus"
	"github.com/dokzlo13/ledd/internal/engine"
	"github.com/dokzlo13/ledd/internal/pwm"
)

func newTestServer(t *testing.T) (*Server, *pwm.Memory) {
	t.Helper()

	sink := pwm.NewMemory()
	eng, err := engine.New(sink, 255)
	if err != nil {
		t.Fatalf("engine.New() error: %v", err)
	}
	b := bus.New(eng, nil, 0)
	t.Cleanup(func() { b.Close(context.Background()) })

	return NewServer("127.0.0.1", 0, 100, b), sink
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) engine.Snapshot {
	t.Helper()
	var snap engine.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v (body %q)", err, rec.Body.String())
	}
	return snap
}

func TestGetState(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /state = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)
	if snap.Source != "temperature" || snap.Kelvin != 1900 {
		t.Errorf("default state = %+v, want temperature/1900", snap)
	}
	if snap.Power {
		t.Error("fixture should start powered off")
	}
}

func TestPostTemperature(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/temperature", `{"l": 60, "kelvin": 2700}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /temperature = %d (body %q)", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)
	if snap.Kelvin != 2700 || snap.Lightness != 60 {
		t.Errorf("state after set = %+v, want kelvin 2700 lightness 60", snap)
	}
}

func TestPostRawProjectsDuties(t *testing.T) {
	s, sink := newTestServer(t)

	if rec := doRequest(t, s, http.MethodPost, "/power", `{"on": true}`); rec.Code != http.StatusOK {
		t.Fatalf("POST /power = %d", rec.Code)
	}

	rec := doRequest(t, s, http.MethodPost, "/raw", `{"r": 0.5, "g": 0.25, "b": 1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /raw = %d (body %q)", rec.Code, rec.Body.String())
	}

	if got := sink.Latest(pwm.Red); got != 128 {
		t.Errorf("red duty = %d, want 128", got)
	}
	if got := sink.Latest(pwm.Green); got != 64 {
		t.Errorf("green duty = %d, want 64", got)
	}
	if got := sink.Latest(pwm.Blue); got != 255 {
		t.Errorf("blue duty = %d, want 255", got)
	}

	snap := decodeSnapshot(t, rec)
	if snap.Source != "raw" {
		t.Errorf("source = %q, want \"raw\"", snap.Source)
	}
}

func TestPostCalibrateDegenerate(t *testing.T) {
	s, _ := newTestServer(t)

	// Coincident primaries collapse the gamut triangle.
	body := `{
		"red":   {"uv": {"u": 0.3, "v": 0.3}, "flux": 1},
		"green": {"uv": {"u": 0.3, "v": 0.3}, "flux": 1},
		"blue":  {"uv": {"u": 0.3, "v": 0.3}, "flux": 1},
		"max_lum": 3,
		"red_to_green": {"p1": 2.9658, "p2": 0, "q1": 1.9658},
		"green_to_blue": {"p1": 1.3587, "p2": 0, "q1": 0.3587},
		"blue_to_red": {"p1": -0.2121, "p2": 0.2121, "q1": 0.2121}
	}`
	rec := doRequest(t, s, http.MethodPost, "/calibrate", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("POST /calibrate = %d, want 422 (body %q)", rec.Code, rec.Body.String())
	}
}

func TestPostRawInvalidBody(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/raw", `{"r": "not a number"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /raw with bad body = %d, want 400", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	sink := pwm.NewMemory()
	eng, err := engine.New(sink, 255)
	if err != nil {
		t.Fatalf("engine.New() error: %v", err)
	}
	b := bus.New(eng, nil, 0)
	t.Cleanup(func() { b.Close(context.Background()) })

	// Burst of 1: the second immediate request must be limited.
	s := NewServer("127.0.0.1", 0, 1, b)
	if rec := doRequest(t, s, http.MethodPost, "/power", `{"on": true}`); rec.Code != http.StatusOK {
		t.Fatalf("first request = %d, want 200", rec.Code)
	}
	if rec := doRequest(t, s, http.MethodPost, "/power", `{"on": false}`); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request = %d, want 429", rec.Code)
	}
}
