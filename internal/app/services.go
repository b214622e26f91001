package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/ledd/internal/bus"
	"github.com/dokzlo13/ledd/internal/config"
	"github.com/dokzlo13/ledd/internal/db"
	"github.com/dokzlo13/ledd/internal/engine"
	"github.com/dokzlo13/ledd/internal/pwm"
	"github.com/dokzlo13/ledd/internal/script"
	"github.com/dokzlo13/ledd/internal/server"
	"github.com/dokzlo13/ledd/internal/state"
)

// Services is a container for all application services.
// It manages service initialization order and dependencies.
type Services struct {
	cfg *config.Config

	// Core infrastructure
	DB    *db.DB
	Store *state.Store
	Sink  pwm.Sink

	// Engine and its command bus
	Engine *engine.Engine
	Bus    *bus.Bus

	// Optional surfaces
	Server *server.Server
	Script *script.Runtime

	scriptDone chan struct{}
}

// NewServices creates all services with proper dependency injection and
// restores the persisted fixture state.
func NewServices(cfg *config.Config) (*Services, error) {
	s := &Services{cfg: cfg}

	// Initialize database
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	s.DB = database
	s.Store = state.NewStore(database.DB)

	// Initialize the output driver
	s.Sink, err = newSink(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	// Initialize the color engine
	s.Engine, err = engine.New(s.Sink, cfg.PWM.Resolution)
	if err != nil {
		s.Close()
		return nil, err
	}

	// Initialize the command bus; from here on all mutations go through it
	s.Bus = bus.New(s.Engine, s.Store, bus.DefaultQueueSize)

	if cfg.Server.Enabled {
		s.Server = server.NewServer(cfg.Server.Host, cfg.Server.Port, cfg.Server.RateLimitRPS, s.Bus)
	}
	if cfg.Script != "" {
		s.Script = script.NewRuntime(s.Bus)
	}

	return s, nil
}

func newSink(cfg *config.Config) (pwm.Sink, error) {
	switch cfg.PWM.Driver {
	case "memory":
		log.Warn().Msg("Using in-memory PWM driver, no hardware will be driven")
		return pwm.NewMemory(), nil
	case "sysfs":
		lines, err := cfg.PWM.Lines()
		if err != nil {
			return nil, err
		}
		return pwm.NewSysfs(cfg.PWM.Chip, cfg.PWM.Period.Duration(), lines), nil
	default:
		return nil, fmt.Errorf("unknown pwm driver %q", cfg.PWM.Driver)
	}
}

// restore re-applies the persisted calibration and the last color before any
// commands are accepted. A calibration stored by a runtime calibrate command
// wins over the config file one; --reset-state clears it.
func (s *Services) restore() error {
	cal, err := s.Store.LoadCalibration()
	if err != nil {
		return err
	}
	if cal == nil {
		cal = s.cfg.Calibration
	}
	if cal != nil {
		if err := s.Engine.Calibrate(*cal); err != nil {
			log.Warn().Err(err).Msg("Stored calibration rejected, keeping defaults")
		}
	}

	snap, err := s.Store.LoadSnapshot()
	if err != nil {
		return err
	}
	if snap != nil {
		if err := s.Engine.Restore(*snap); err != nil {
			log.Warn().Err(err).Msg("Failed to restore last color")
		} else {
			log.Info().
				Str("source", snap.Source).
				Bool("power", snap.Power).
				Msg("Restored last fixture state")
		}
	}
	return nil
}

// Start restores the persisted fixture state and starts all services.
// Restore runs here, not in NewServices, so --reset-state can clear the
// store between construction and startup.
// The onFatalError callback is called when a service fails terminally.
func (s *Services) Start(ctx context.Context, onFatalError func(error)) error {
	if err := s.restore(); err != nil {
		return err
	}

	if s.Server != nil {
		go func() {
			if err := s.Server.Run(ctx, s.cfg.ShutdownTimeout.Duration()); err != nil {
				onFatalError(err)
			}
		}()
	}

	if s.Script != nil {
		s.scriptDone = make(chan struct{})
		go func() {
			defer close(s.scriptDone)
			if err := s.Script.Run(ctx, s.cfg.Script); err != nil {
				// A broken scene script should not take the daemon down.
				log.Error().Err(err).Str("script", s.cfg.Script).Msg("Scene script failed")
			}
		}()
	}

	return nil
}

// ClearState clears the persisted snapshot and calibration.
func (s *Services) ClearState() error {
	return s.Store.Clear()
}

// Stop gracefully stops all services.
func (s *Services) Stop(ctx context.Context) error {
	// The script goroutine must exit before its VM is closed.
	if s.scriptDone != nil {
		<-s.scriptDone
	}
	if s.Bus != nil {
		s.Bus.Close(ctx)
	}
	s.Close()
	return nil
}

// Close releases all resources.
func (s *Services) Close() {
	if s.Script != nil {
		s.Script.Close()
		s.Script = nil
	}
	if s.Sink != nil {
		if err := s.Sink.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close PWM driver")
		}
		s.Sink = nil
	}
	if s.DB != nil {
		s.DB.Close()
		s.DB = nil
	}
}
