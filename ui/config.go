package ui

// Config contains TUI-specific configuration.
type Config struct {
	GlamourMaxWidth uint
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	EnableMouse     bool

	// Text read aloud as soon as the program starts, e.g. from a pipe.
	InitialText string

	// Adjustment steps for the volume and rate keys.
	VolumeStep float64 `env:"HARK_VOLUME_STEP" envDefault:"0.05"`
	RateStep   float64 `env:"HARK_RATE_STEP"   envDefault:"0.1"`

	// For debugging the UI
	GlamourEnabled bool `env:"HARK_ENABLE_GLAMOUR" envDefault:"true"`
}
