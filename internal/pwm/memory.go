package pwm

import "sync"

// Write records a single duty cycle write observed by a Memory sink.
type WriteRecord struct {
	Channel Channel
	Duty    uint32
}

// Memory is an in-memory sink. It backs the dry-run driver mode and the
// tests; it records every write in order and keeps the latest duty per
// channel.
type Memory struct {
	mu      sync.Mutex
	maxDuty uint32
	latest  map[Channel]uint32
	history []WriteRecord
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{latest: make(map[Channel]uint32)}
}

// Configure sets the maximum duty cycle value.
func (m *Memory) Configure(maxDuty uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxDuty = maxDuty
	return nil
}

// Write records the duty cycle for one channel.
func (m *Memory) Write(ch Channel, duty uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest[ch] = duty
	m.history = append(m.history, WriteRecord{Channel: ch, Duty: duty})
	return nil
}

// Close implements Sink.
func (m *Memory) Close() error { return nil }

// MaxDuty returns the configured resolution.
func (m *Memory) MaxDuty() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxDuty
}

// Latest returns the last duty cycle written to a channel.
func (m *Memory) Latest(ch Channel) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest[ch]
}

// History returns a copy of every write in order.
func (m *Memory) History() []WriteRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WriteRecord, len(m.history))
	copy(out, m.history)
	return out
}

// Reset clears the recorded history, keeping the configured resolution.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
	m.latest = make(map[Channel]uint32)
}
