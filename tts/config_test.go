package tts

import (
	"math"
	"testing"
)

func TestClampRate(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"below minimum", 0.17, 0.2},
		{"near maximum", 1.97, 2.0},
		{"tie rounds away from zero", 1.05, 1.1},
		{"already valid", 1.3, 1.3},
		{"negative", -4, 0.2},
		{"far above", 9.99, 2.0},
		{"rounds down", 1.04, 1.0},
		{"not a number", math.NaN(), 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampRate(tt.in)
			if got != tt.want {
				t.Errorf("ClampRate(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClampRateInvariant(t *testing.T) {
	for i := -50; i <= 300; i++ {
		in := float64(i) / 97
		got := ClampRate(in)
		if got < MinRate || got > MaxRate {
			t.Fatalf("ClampRate(%v) = %v out of range", in, got)
		}
		tenths := got * 10
		if math.Abs(tenths-math.Round(tenths)) > 1e-9 {
			t.Fatalf("ClampRate(%v) = %v is not a multiple of 0.1", in, got)
		}
	}
}

func TestClampVolume(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.3, 0.0},
		{1.4, 1.0},
		{0.55, 0.55},
		{0, 0},
		{1, 1},
		{math.Inf(1), 1},
		{math.NaN(), 1},
	}

	for _, tt := range tests {
		if got := ClampVolume(tt.in); got != tt.want {
			t.Errorf("ClampVolume(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfigSetters(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Voice != "default" || cfg.Volume != 1.0 || cfg.Rate != 1.0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	cfg.SetVolume(3)
	cfg.SetRate(0.01)
	cfg.SetVoice("Amy")

	if cfg.Volume != 1.0 {
		t.Errorf("expected clamped volume, got %v", cfg.Volume)
	}
	if cfg.Rate != 0.2 {
		t.Errorf("expected clamped rate, got %v", cfg.Rate)
	}
	if cfg.Voice != "Amy" {
		t.Errorf("expected voice Amy, got %q", cfg.Voice)
	}
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{Voice: "", Volume: -1, Rate: 1.66}
	cfg.Normalize()

	want := Config{Voice: DefaultVoice, Volume: 0, Rate: 1.7}
	if cfg != want {
		t.Errorf("Normalize() = %+v, want %+v", cfg, want)
	}
}
