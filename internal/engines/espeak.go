package engines

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/hark/tts"
	"github.com/charmbracelet/log"
)

// EspeakName is the registry name of the espeak-ng engine.
const EspeakName = "espeak"

// Espeak synthesizes with the espeak-ng command line tool. espeak-ng
// writes a broken WAV header to stdout, so audio goes through a temp file.
type Espeak struct {
	binary  string
	tempDir string
	run     runner
}

// EspeakConfig configures an Espeak engine.
type EspeakConfig struct {
	Binary  string `env:"BINARY"`   // defaults to espeak-ng, then espeak
	TempDir string `env:"TEMP_DIR"` // defaults to os.TempDir()
}

// NewEspeak locates the espeak-ng binary.
func NewEspeak(cfg EspeakConfig) (*Espeak, error) {
	names := []string{"espeak-ng", "espeak"}
	if cfg.Binary != "" {
		names = []string{cfg.Binary}
	}
	bin, err := lookBinary(names[0], names[1:]...)
	if err != nil {
		return nil, tts.NewTTSError(tts.ErrEngineUnavailable, EspeakName, "locate").WithCause(err)
	}
	return &Espeak{binary: bin, tempDir: cfg.TempDir, run: runCommand}, nil
}

// Name implements tts.Engine.
func (e *Espeak) Name() string { return EspeakName }

// Close implements tts.Engine.
func (e *Espeak) Close() error { return nil }

// Synthesize implements tts.Synthesizer.
func (e *Espeak) Synthesize(ctx context.Context, text string, voice tts.Voice) (*tts.Utterance, error) {
	words := SplitWords(text)
	if len(words) == 0 {
		return &tts.Utterance{}, nil
	}

	dir, err := os.MkdirTemp(e.tempDir, "hark-espeak-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir) //nolint:errcheck
	out := filepath.Join(dir, "speech.wav")

	args := []string{"-b", "1", "-w", out, "--stdin"}
	if voice.Handle != "" {
		args = append([]string{"-v", voice.Handle}, args...)
	}
	if _, err := e.run(ctx, strings.NewReader(text), e.binary, args...); err != nil {
		return nil, err
	}

	f, err := os.Open(out)
	if err != nil {
		return nil, fmt.Errorf("espeak wrote no audio: %w", err)
	}
	defer f.Close() //nolint:errcheck

	audio, err := decodeWAV(f)
	if err != nil {
		return nil, err
	}
	return &tts.Utterance{Audio: audio, Cues: EstimateCues(words, audio.Duration())}, nil
}

// Voices implements tts.VoiceLister.
func (e *Espeak) Voices(ctx context.Context) ([]tts.Voice, error) {
	out, err := e.run(ctx, nil, e.binary, "--voices")
	if err != nil {
		return nil, err
	}
	voices := parseEspeakVoices(out)
	log.Debug("Enumerated espeak voices", "count", len(voices))
	return voices, nil
}

// parseEspeakVoices reads the table printed by `espeak-ng --voices`:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  af              --/M      Afrikaans          gmw/af
func parseEspeakVoices(out []byte) []tts.Voice {
	var voices []tts.Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 5 {
			continue
		}
		voices = append(voices, tts.Voice{
			Name:     strings.ReplaceAll(fields[3], "_", " "),
			Language: fields[1],
			Engine:   EspeakName,
			Handle:   fields[1],
		})
	}
	return voices
}
