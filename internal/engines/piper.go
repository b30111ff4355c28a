package engines

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/hark/tts"
	"github.com/mitchellh/go-homedir"
)

// PiperName is the registry name of the piper engine.
const PiperName = "piper"

const piperDefaultSampleRate = 22050

// Piper synthesizes with the piper command line tool, one fresh process per
// utterance. Voices are the .onnx models found in ModelDir.
type Piper struct {
	binary   string
	modelDir string
	run      runner

	mu    sync.Mutex
	rates map[string]int // model path -> sample rate
}

// PiperConfig configures a Piper engine.
type PiperConfig struct {
	Binary   string `env:"BINARY"`    // defaults to piper on PATH or in ~/.local/bin
	ModelDir string `env:"MODEL_DIR"` // directory of <voice>.onnx + <voice>.onnx.json pairs
}

// piperModelConfig is the subset of <voice>.onnx.json we read.
type piperModelConfig struct {
	Audio struct {
		SampleRate int `json:"sample_rate"`
	} `json:"audio"`
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
}

// NewPiper locates the piper binary and model directory.
func NewPiper(cfg PiperConfig) (*Piper, error) {
	names := []string{"piper"}
	if cfg.Binary != "" {
		names = []string{cfg.Binary}
	}
	if home, err := homedir.Dir(); err == nil && cfg.Binary == "" {
		names = append(names,
			filepath.Join(home, ".local", "bin", "piper"),
			filepath.Join(home, "bin", "piper"),
		)
	}
	bin, err := lookBinary(names[0], names[1:]...)
	if err != nil {
		return nil, tts.NewTTSError(tts.ErrEngineUnavailable, PiperName, "locate").WithCause(err)
	}

	dir, err := homedir.Expand(cfg.ModelDir)
	if err != nil {
		return nil, fmt.Errorf("expand model dir: %w", err)
	}
	if dir == "" {
		return nil, tts.NewTTSError(tts.ErrEngineUnavailable, PiperName, "locate").
			WithCause(errors.New("no piper model directory configured"))
	}

	return &Piper{
		binary:   bin,
		modelDir: dir,
		run:      runCommand,
		rates:    make(map[string]int),
	}, nil
}

// Name implements tts.Engine.
func (p *Piper) Name() string { return PiperName }

// Close implements tts.Engine.
func (p *Piper) Close() error { return nil }

// Synthesize implements tts.Synthesizer. Handle is the model path.
func (p *Piper) Synthesize(ctx context.Context, text string, voice tts.Voice) (*tts.Utterance, error) {
	words := SplitWords(text)
	if len(words) == 0 {
		return &tts.Utterance{}, nil
	}
	if voice.Handle == "" {
		return nil, fmt.Errorf("%w: piper voice %q has no model", tts.ErrInvalidVoice, voice.Name)
	}

	out, err := p.run(ctx, strings.NewReader(text+"\n"), p.binary,
		"--model", voice.Handle,
		"--output-raw",
	)
	if err != nil {
		return nil, err
	}

	audio, err := rawPCM(out, p.sampleRate(voice.Handle))
	if err != nil {
		return nil, err
	}
	return &tts.Utterance{Audio: audio, Cues: EstimateCues(words, audio.Duration())}, nil
}

// Voices implements tts.VoiceLister.
func (p *Piper) Voices(context.Context) ([]tts.Voice, error) {
	models, err := filepath.Glob(filepath.Join(p.modelDir, "*.onnx"))
	if err != nil {
		return nil, err
	}
	slices.Sort(models)

	voices := make([]tts.Voice, 0, len(models))
	for _, m := range models {
		cfg, err := readPiperConfig(m)
		if err != nil {
			continue
		}
		p.mu.Lock()
		p.rates[m] = cfg.Audio.SampleRate
		p.mu.Unlock()

		lang := cfg.Language.Code
		if lang == "" {
			lang = "und"
		}
		voices = append(voices, tts.Voice{
			Name:     strings.TrimSuffix(filepath.Base(m), ".onnx"),
			Language: lang,
			Engine:   PiperName,
			Handle:   m,
		})
	}
	return voices, nil
}

func (p *Piper) sampleRate(model string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r, ok := p.rates[model]; ok && r > 0 {
		return r
	}
	cfg, err := readPiperConfig(model)
	if err != nil || cfg.Audio.SampleRate <= 0 {
		return piperDefaultSampleRate
	}
	p.rates[model] = cfg.Audio.SampleRate
	return cfg.Audio.SampleRate
}

func readPiperConfig(model string) (piperModelConfig, error) {
	var cfg piperModelConfig
	data, err := os.ReadFile(model + ".json")
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s.json: %w", model, err)
	}
	return cfg, nil
}
