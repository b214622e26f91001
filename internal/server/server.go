// Package server exposes the HTTP control API for the fixture.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/dokzlo13/ledd/internal/bus"
)

// Server is an HTTP server translating control requests into bus commands.
type Server struct {
	addr       string
	bus        *bus.Bus
	limiter    *rate.Limiter
	httpServer *http.Server
}

// NewServer creates a new control server. Mutation endpoints share one rate
// limiter so a misbehaving client cannot flood the command queue.
func NewServer(host string, port int, rateLimitRPS float64, b *bus.Bus) *Server {
	return &Server{
		addr:    fmt.Sprintf("%s:%d", host, port),
		bus:     b,
		limiter: rate.NewLimiter(rate.Limit(rateLimitRPS), int(rateLimitRPS)),
	}
}

// routes builds the request mux. Mutation endpoints go through the shared
// rate limiter.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("POST /power", s.limited(s.handlePower))
	mux.HandleFunc("POST /raw", s.limited(s.handleRaw))
	mux.HandleFunc("POST /ucs", s.limited(s.handleUcs))
	mux.HandleFunc("POST /temperature", s.limited(s.handleTemperature))
	mux.HandleFunc("POST /calibrate", s.limited(s.handleCalibrate))

	return mux
}

// Run starts the control server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.routes(),
	}

	log.Info().Str("addr", s.addr).Msg("Starting control server")

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Control server shutdown error")
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// limited wraps a mutation handler with the shared rate limiter.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}
