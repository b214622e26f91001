package pwm

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Sysfs drives LED channels through the Linux sysfs PWM interface
// (/sys/class/pwm). Duty cycles arrive as integers in 0..maxDuty and are
// scaled to nanoseconds of the configured period.
type Sysfs struct {
	root     string
	chip     int
	periodNs uint32
	maxDuty  uint32
	lines    map[Channel]int
	exported []int
}

// NewSysfs creates a sink for the given PWM chip. lines maps each logical
// channel to a PWM line number on that chip. Channels absent from the map
// are silently ignored on write, so fixtures without white channels can
// leave them unmapped.
func NewSysfs(chip int, period time.Duration, lines map[Channel]int) *Sysfs {
	return &Sysfs{
		root:     "/sys/class/pwm",
		chip:     chip,
		periodNs: uint32(period.Nanoseconds()),
		lines:    lines,
	}
}

func (s *Sysfs) chipDir() string {
	return filepath.Join(s.root, fmt.Sprintf("pwmchip%d", s.chip))
}

func (s *Sysfs) lineDir(line int) string {
	return filepath.Join(s.chipDir(), fmt.Sprintf("pwm%d", line))
}

// Configure exports every mapped line, sets its period and enables it with
// zero duty cycle.
func (s *Sysfs) Configure(maxDuty uint32) error {
	s.maxDuty = maxDuty

	for ch, line := range s.lines {
		if _, err := os.Stat(s.lineDir(line)); os.IsNotExist(err) {
			if err := writeSysfs(filepath.Join(s.chipDir(), "export"), strconv.Itoa(line)); err != nil {
				return fmt.Errorf("failed to export pwm%d: %w", line, err)
			}
			s.exported = append(s.exported, line)
		}
		if err := writeSysfs(filepath.Join(s.lineDir(line), "period"), strconv.FormatUint(uint64(s.periodNs), 10)); err != nil {
			return fmt.Errorf("failed to set period on pwm%d: %w", line, err)
		}
		if err := writeSysfs(filepath.Join(s.lineDir(line), "duty_cycle"), "0"); err != nil {
			return fmt.Errorf("failed to zero pwm%d: %w", line, err)
		}
		if err := writeSysfs(filepath.Join(s.lineDir(line), "enable"), "1"); err != nil {
			return fmt.Errorf("failed to enable pwm%d: %w", line, err)
		}
		log.Debug().Str("channel", ch.String()).Int("line", line).Msg("PWM line configured")
	}

	return nil
}

// Write scales the duty cycle to nanoseconds and writes it to the line
// mapped for the channel. Unmapped channels are ignored.
func (s *Sysfs) Write(ch Channel, duty uint32) error {
	line, ok := s.lines[ch]
	if !ok {
		return nil
	}
	if s.maxDuty == 0 {
		return fmt.Errorf("sink not configured")
	}
	ns := uint64(s.periodNs) * uint64(duty) / uint64(s.maxDuty)
	return writeSysfs(filepath.Join(s.lineDir(line), "duty_cycle"), strconv.FormatUint(ns, 10))
}

// Close disables and unexports every line this sink exported.
func (s *Sysfs) Close() error {
	var firstErr error
	for _, line := range s.exported {
		if err := writeSysfs(filepath.Join(s.lineDir(line), "enable"), "0"); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := writeSysfs(filepath.Join(s.chipDir(), "unexport"), strconv.Itoa(line)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func writeSysfs(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(value)
	return err
}
