// Package pwm abstracts the PWM output boundary of the LED engine.
package pwm

// Channel identifies one logical output channel of the fixture.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
	Warm
	Cold
)

// Channels lists every logical channel in fixed order.
var Channels = []Channel{Red, Green, Blue, Warm, Cold}

// String returns the channel name used in configuration and logs.
func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Warm:
		return "warm"
	case Cold:
		return "cold"
	}
	return "unknown"
}

// Sink is the output boundary implemented by the host platform. The engine
// configures the duty cycle resolution once at construction and then writes
// integer duty cycles in the range 0..maxDuty.
type Sink interface {
	// Configure sets the maximum duty cycle value, e.g. 255 or 1023.
	Configure(maxDuty uint32) error
	// Write sets the duty cycle for one channel.
	Write(ch Channel, duty uint32) error
	// Close releases any platform resources held by the sink.
	Close() error
}
