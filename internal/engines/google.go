package engines

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"github.com/charmbracelet/hark/tts"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

// GoogleName is the registry name of the Google Cloud engine.
const GoogleName = "google"

const (
	// googleChunkLimit stays under the 5000 byte request limit.
	googleChunkLimit  = 4800
	googleSampleRate  = 24000
	googleDefaultRPM  = 300
	googleDialTimeout = 10 * time.Second
)

// googleAPI is the part of the Text-to-Speech client the engine uses.
type googleAPI interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error)
	ListVoices(ctx context.Context, req *texttospeechpb.ListVoicesRequest) (*texttospeechpb.ListVoicesResponse, error)
	Close() error
}

type googleClient struct {
	c *texttospeech.Client
}

func (g googleClient) SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
	return g.c.SynthesizeSpeech(ctx, req)
}

func (g googleClient) ListVoices(ctx context.Context, req *texttospeechpb.ListVoicesRequest) (*texttospeechpb.ListVoicesResponse, error) {
	return g.c.ListVoices(ctx, req)
}

func (g googleClient) Close() error { return g.c.Close() }

// GoogleConfig configures a Google engine.
type GoogleConfig struct {
	CredentialsFile   string `env:"CREDENTIALS_FILE"` // empty uses application default credentials
	RequestsPerMinute int    `env:"REQUESTS_PER_MINUTE" envDefault:"300"`
}

// Google synthesizes with Google Cloud Text-to-Speech. The API returns no
// word timing for plain text, so cues are estimated.
type Google struct {
	api     googleAPI
	limiter *rate.Limiter
}

// NewGoogle creates a client using cfg's credentials.
func NewGoogle(ctx context.Context, cfg GoogleConfig) (*Google, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	dctx, cancel := context.WithTimeout(ctx, googleDialTimeout)
	defer cancel()
	client, err := texttospeech.NewClient(dctx, opts...)
	if err != nil {
		return nil, tts.NewTTSError(tts.ErrEngineUnavailable, GoogleName, "connect").WithCause(err)
	}
	return newGoogle(googleClient{c: client}, cfg.RequestsPerMinute), nil
}

func newGoogle(api googleAPI, rpm int) *Google {
	if rpm <= 0 {
		rpm = googleDefaultRPM
	}
	return &Google{
		api:     api,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
	}
}

// Name implements tts.Engine.
func (g *Google) Name() string { return GoogleName }

// Close implements tts.Engine.
func (g *Google) Close() error { return g.api.Close() }

// Synthesize implements tts.Synthesizer. Long text is sent in chunks and
// the audio joined.
func (g *Google) Synthesize(ctx context.Context, text string, voice tts.Voice) (*tts.Utterance, error) {
	if len(SplitWords(text)) == 0 {
		return &tts.Utterance{}, nil
	}

	var (
		parts  []*tts.Audio
		cues   []tts.WordCue
		offset time.Duration
	)
	for i, chunk := range splitIntoChunks(text, googleChunkLimit) {
		words := SplitWords(chunk)
		if len(words) == 0 {
			continue
		}
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
		}

		resp, err := g.api.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: voice.Language,
				Name:         voice.Handle,
			},
			AudioConfig: &texttospeechpb.AudioConfig{
				AudioEncoding:   texttospeechpb.AudioEncoding_LINEAR16,
				SampleRateHertz: googleSampleRate,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to synthesize chunk %d: %w", i, err)
		}

		audio, err := decodeWAV(bytes.NewReader(resp.GetAudioContent()))
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		parts = append(parts, audio)
		cues = append(cues, shiftCues(EstimateCues(words, audio.Duration()), offset)...)
		offset += audio.Duration()
	}

	audio, err := concatAudio(parts)
	if err != nil {
		return nil, err
	}
	return &tts.Utterance{Audio: audio, Cues: cues}, nil
}

// Voices implements tts.VoiceLister.
func (g *Google) Voices(ctx context.Context) ([]tts.Voice, error) {
	resp, err := g.api.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{})
	if err != nil {
		return nil, err
	}

	voices := make([]tts.Voice, 0, len(resp.GetVoices()))
	for _, v := range resp.GetVoices() {
		lang := "und"
		if codes := v.GetLanguageCodes(); len(codes) > 0 {
			lang = codes[0]
		}
		voices = append(voices, tts.Voice{
			Name:     v.GetName(),
			Language: lang,
			Engine:   GoogleName,
			Handle:   v.GetName(),
		})
	}
	return voices, nil
}

// splitIntoChunks cuts text into pieces of at most limit runes, preferring
// to break after whitespace.
func splitIntoChunks(text string, limit int) []string {
	var chunks []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if strings.ContainsRune(" \n\t", runes[i-1]) {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
