package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/ledd/internal/bus"
	"github.com/dokzlo13/ledd/internal/calib"
	"github.com/dokzlo13/ledd/internal/color"
	"github.com/dokzlo13/ledd/internal/engine"
)

type powerRequest struct {
	On bool `json:"on"`
}

type ucsRequest struct {
	L float64 `json:"l"`
	U float64 `json:"u"`
	V float64 `json:"v"`
}

type temperatureRequest struct {
	L      float64 `json:"l"`
	Kelvin uint16  `json:"kelvin"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.bus.State(r.Context())
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePower(w http.ResponseWriter, r *http.Request) {
	var req powerRequest
	if !decode(w, r, &req) {
		return
	}
	s.mutate(w, r, "set_power", func(e *engine.Engine) error {
		return e.SetPower(req.On)
	})
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	var req color.RGB
	if !decode(w, r, &req) {
		return
	}
	s.mutate(w, r, "set_raw", func(e *engine.Engine) error {
		return e.SetRaw(req)
	})
}

func (s *Server) handleUcs(w http.ResponseWriter, r *http.Request) {
	var req ucsRequest
	if !decode(w, r, &req) {
		return
	}
	s.mutate(w, r, "set_ucs", func(e *engine.Engine) error {
		return e.SetCie1976Ucs(color.Luv{L: req.L, U: req.U, V: req.V})
	})
}

func (s *Server) handleTemperature(w http.ResponseWriter, r *http.Request) {
	var req temperatureRequest
	if !decode(w, r, &req) {
		return
	}
	s.mutate(w, r, "set_temperature", func(e *engine.Engine) error {
		return e.SetColorTemperature(req.L, req.Kelvin)
	})
}

func (s *Server) handleCalibrate(w http.ResponseWriter, r *http.Request) {
	var req calib.Calibration
	if !decode(w, r, &req) {
		return
	}
	s.mutate(w, r, "calibrate", func(e *engine.Engine) error {
		return e.Calibrate(req)
	})
}

// mutate runs one engine mutation through the bus and reports the fresh
// state on success.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, name string, fn bus.Mutation) {
	if err := s.bus.Execute(r.Context(), name, fn); err != nil {
		writeCommandError(w, err)
		return
	}
	snap, err := s.bus.State(r.Context())
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrDegenerateCalibration),
		errors.Is(err, engine.ErrUnachievableLuma):
		// The target cannot be realized; the previous color is held.
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, bus.ErrBusy):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, bus.ErrClosing):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error().Err(err).Msg("Command failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
