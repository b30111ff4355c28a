package engines

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// wavBytes encodes frames of silence as a mono 16-bit WAV.
func wavBytes(t *testing.T, frames, rate int) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	format := beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 1, Precision: 2}
	if err := wav.Encode(f, beep.Silence(frames), format); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

type call struct {
	stdin string
	name  string
	args  []string
}

// fakeRunner records invocations and answers with fn.
type fakeRunner struct {
	calls []call
	fn    func(args []string) ([]byte, error)
}

func (f *fakeRunner) run(_ context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	c := call{name: name, args: args}
	if stdin != nil {
		b, _ := io.ReadAll(stdin)
		c.stdin = string(b)
	}
	f.calls = append(f.calls, c)
	return f.fn(args)
}
