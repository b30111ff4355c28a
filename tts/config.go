package tts

import "math"

// Limits for the persisted playback settings.
const (
	MinVolume = 0.0
	MaxVolume = 1.0
	MinRate   = 0.2
	MaxRate   = 2.0

	// DefaultVoice is stored before the user has picked anything.
	DefaultVoice = "default"
)

// Config is the persisted playback configuration. The zero value is not
// valid; use DefaultConfig.
type Config struct {
	Voice  string  `yaml:"voice" mapstructure:"voice"`
	Volume float64 `yaml:"volume" mapstructure:"volume"`
	Rate   float64 `yaml:"rate" mapstructure:"rate"`
}

// DefaultConfig returns the configuration used on first run or when loading
// fails.
func DefaultConfig() Config {
	return Config{
		Voice:  DefaultVoice,
		Volume: 1.0,
		Rate:   1.0,
	}
}

// SetVoice stores the display name of the selected voice.
func (c *Config) SetVoice(name string) {
	c.Voice = name
}

// SetVolume clamps and stores the volume.
func (c *Config) SetVolume(v float64) {
	c.Volume = ClampVolume(v)
}

// SetRate clamps, rounds and stores the rate.
func (c *Config) SetRate(r float64) {
	c.Rate = ClampRate(r)
}

// Normalize applies the setters to every field so a config read from disk
// satisfies the same invariants as one built in memory.
func (c *Config) Normalize() {
	if c.Voice == "" {
		c.Voice = DefaultVoice
	}
	c.SetVolume(c.Volume)
	c.SetRate(c.Rate)
}

// ClampVolume limits v to [MinVolume, MaxVolume]. NaN maps to MaxVolume.
func ClampVolume(v float64) float64 {
	if math.IsNaN(v) {
		return MaxVolume
	}
	return math.Max(MinVolume, math.Min(MaxVolume, v))
}

// ClampRate rounds r to the nearest tenth, ties away from zero, and limits
// the result to [MinRate, MaxRate]. NaN maps to 1.0.
func ClampRate(r float64) float64 {
	if math.IsNaN(r) {
		return 1.0
	}
	r = math.Round(r*10) / 10
	return math.Max(MinRate, math.Min(MaxRate, r))
}
