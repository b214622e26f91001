package engine

import "github.com/dokzlo13/ledd/internal/color"

// Snapshot is a restartable capture of the engine state. The daemon persists
// one after every applied command so the fixture resumes its last color
// after a restart.
type Snapshot struct {
	Source    string    `json:"source"`
	Power     bool      `json:"power"`
	Raw       color.RGB `json:"raw"`
	Lightness float64   `json:"lightness"`
	Chroma    color.UV  `json:"chroma"`
	Kelvin    uint16    `json:"kelvin"`
}

// Snapshot captures the current state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Source:    e.src.String(),
		Power:     e.on,
		Raw:       e.raw,
		Lightness: e.lightness,
		Chroma:    e.chroma,
		Kelvin:    e.kelvin,
	}
}

// Restore re-applies a snapshot through the regular setters, so clamping,
// quantization and cache invalidation behave exactly as they would for live
// commands. Power is applied last to avoid a flash of the previous color.
func (e *Engine) Restore(s Snapshot) error {
	var err error
	switch s.Source {
	case sourceTemperature.String():
		err = e.SetColorTemperature(s.Lightness, s.Kelvin)
	case sourceUCS.String():
		err = e.SetCie1976Ucs(color.Luv{L: s.Lightness, U: s.Chroma.U, V: s.Chroma.V})
	default:
		err = e.SetRaw(s.Raw)
	}
	if err != nil {
		return err
	}
	return e.SetPower(s.Power)
}
