package engines

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/hark/tts"
	"github.com/coder/websocket"
	"golang.org/x/time/rate"
)

// ElevenLabsName is the registry name of the ElevenLabs engine.
const ElevenLabsName = "elevenlabs"

const (
	elevenLabsWS         = "wss://api.elevenlabs.io"
	elevenLabsHTTP       = "https://api.elevenlabs.io"
	elevenLabsModel      = "eleven_flash_v2_5"
	elevenLabsSampleRate = 16000
	elevenLabsDefaultRPM = 60
)

// ErrMissingAPIKey is returned when a cloud engine has no credentials.
var ErrMissingAPIKey = errors.New("missing API key")

// ElevenLabsConfig configures an ElevenLabs engine.
type ElevenLabsConfig struct {
	APIKey            string `env:"API_KEY"`
	Model             string `env:"MODEL"               envDefault:"eleven_flash_v2_5"`
	RequestsPerMinute int    `env:"REQUESTS_PER_MINUTE" envDefault:"60"`

	// overridden in tests
	wsBase   string
	httpBase string
}

// ElevenLabs synthesizes over the stream-input WebSocket. The service
// returns character alignment with each audio chunk, which gives exact
// word cues.
type ElevenLabs struct {
	apiKey   string
	model    string
	wsBase   string
	httpBase string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewElevenLabs validates cfg. No connection is made until first use.
func NewElevenLabs(cfg ElevenLabsConfig) (*ElevenLabs, error) {
	if cfg.APIKey == "" {
		return nil, tts.NewTTSError(tts.ErrEngineUnavailable, ElevenLabsName, "configure").WithCause(ErrMissingAPIKey)
	}
	e := &ElevenLabs{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		wsBase:   cfg.wsBase,
		httpBase: cfg.httpBase,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	if e.model == "" {
		e.model = elevenLabsModel
	}
	if e.wsBase == "" {
		e.wsBase = elevenLabsWS
	}
	if e.httpBase == "" {
		e.httpBase = elevenLabsHTTP
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = elevenLabsDefaultRPM
	}
	e.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	return e, nil
}

// Name implements tts.Engine.
func (e *ElevenLabs) Name() string { return ElevenLabsName }

// Close implements tts.Engine.
func (e *ElevenLabs) Close() error { return nil }

type elevenVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenTextMessage struct {
	Text                 string               `json:"text"`
	VoiceSettings        *elevenVoiceSettings `json:"voice_settings,omitempty"`
	XiAPIKey             string               `json:"xi_api_key,omitempty"`
	TryTriggerGeneration bool                 `json:"try_trigger_generation,omitempty"`
}

type elevenAlignment struct {
	Chars            []string `json:"chars"`
	CharStartTimesMs []int    `json:"charStartTimesMs"`
	CharDurationsMs  []int    `json:"charDurationsMs"`
}

type elevenAudioMessage struct {
	Audio     string           `json:"audio"`
	IsFinal   bool             `json:"isFinal"`
	Alignment *elevenAlignment `json:"alignment"`
	Message   string           `json:"message"`
	Error     string           `json:"error"`
}

// Synthesize implements tts.Synthesizer.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string, voice tts.Voice) (*tts.Utterance, error) {
	if len(SplitWords(text)) == 0 {
		return &tts.Utterance{}, nil
	}
	if voice.Handle == "" {
		return nil, fmt.Errorf("%w: elevenlabs voice %q has no id", tts.ErrInvalidVoice, voice.Name)
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	q := url.Values{}
	q.Set("model_id", e.model)
	q.Set("output_format", fmt.Sprintf("pcm_%d", elevenLabsSampleRate))
	q.Set("sync_alignment", "true")
	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s/stream-input?%s", e.wsBase, url.PathEscape(voice.Handle), q.Encode())

	conn, _, err := websocket.Dial(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: dial: %w", err)
	}
	defer conn.CloseNow() //nolint:errcheck
	conn.SetReadLimit(-1)

	msgs := []elevenTextMessage{
		{
			Text:          " ",
			VoiceSettings: &elevenVoiceSettings{Stability: 0.5, SimilarityBoost: 0.75},
			XiAPIKey:      e.apiKey,
		},
		{Text: text + " ", TryTriggerGeneration: true},
		{Text: ""},
	}
	for _, m := range msgs {
		payload, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
			return nil, fmt.Errorf("elevenlabs: send: %w", err)
		}
	}

	var (
		pcm []byte
		acc alignmentAccumulator
	)
	for {
		_, data, err := conn.Read(ctx)
		if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("elevenlabs: read: %w", err)
		}

		var msg elevenAudioMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("elevenlabs: decode: %w", err)
		}
		if msg.Error != "" {
			return nil, fmt.Errorf("elevenlabs: %s: %s", msg.Error, msg.Message)
		}
		if msg.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(msg.Audio)
			if err != nil {
				return nil, fmt.Errorf("elevenlabs: audio: %w", err)
			}
			start := pcmDuration(len(pcm), elevenLabsSampleRate)
			pcm = append(pcm, chunk...)
			if msg.Alignment != nil {
				acc.add(*msg.Alignment, start)
			}
		}
		if msg.IsFinal {
			break
		}
	}
	_ = conn.Close(websocket.StatusNormalClosure, "done")

	audio, err := rawPCM(pcm, elevenLabsSampleRate)
	if err != nil {
		return nil, err
	}
	cues := acc.cues()
	if len(cues) == 0 {
		cues = EstimateCues(SplitWords(text), audio.Duration())
	}
	return &tts.Utterance{Audio: audio, Cues: cues}, nil
}

func pcmDuration(n, sampleRate int) time.Duration {
	return time.Duration(n/2) * time.Second / time.Duration(sampleRate)
}

// alignmentAccumulator groups aligned characters into words across chunks.
type alignmentAccumulator struct {
	words []tts.WordCue
	cur   strings.Builder
	start time.Duration
	end   time.Duration
}

func (a *alignmentAccumulator) add(al elevenAlignment, offset time.Duration) {
	for i, ch := range al.Chars {
		if i >= len(al.CharStartTimesMs) {
			break
		}
		at := offset + time.Duration(al.CharStartTimesMs[i])*time.Millisecond
		dur := time.Duration(0)
		if i < len(al.CharDurationsMs) {
			dur = time.Duration(al.CharDurationsMs[i]) * time.Millisecond
		}
		if strings.TrimFunc(ch, unicode.IsSpace) == "" {
			a.flush()
			continue
		}
		if a.cur.Len() == 0 {
			a.start = at
		}
		a.cur.WriteString(ch)
		a.end = at + dur
	}
}

func (a *alignmentAccumulator) flush() {
	if a.cur.Len() == 0 {
		return
	}
	if word := a.cur.String(); isWord(word) {
		a.words = append(a.words, tts.WordCue{Text: word, Offset: a.start, Duration: a.end - a.start})
	}
	a.cur.Reset()
}

func (a *alignmentAccumulator) cues() []tts.WordCue {
	a.flush()
	return a.words
}

type elevenVoicesResponse struct {
	Voices []struct {
		VoiceID string            `json:"voice_id"`
		Name    string            `json:"name"`
		Labels  map[string]string `json:"labels"`
	} `json:"voices"`
}

// Voices implements tts.VoiceLister.
func (e *ElevenLabs) Voices(ctx context.Context) ([]tts.Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.httpBase+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: list voices: %w", err)
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: list voices: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs: list voices: unexpected status %d", resp.StatusCode)
	}

	var vr elevenVoicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("elevenlabs: list voices decode: %w", err)
	}

	voices := make([]tts.Voice, 0, len(vr.Voices))
	for _, v := range vr.Voices {
		lang := v.Labels["language"]
		if lang == "" {
			lang = v.Labels["accent"]
		}
		if lang == "" {
			lang = "und"
		}
		voices = append(voices, tts.Voice{
			Name:     v.Name,
			Language: lang,
			Engine:   ElevenLabsName,
			Handle:   v.VoiceID,
		})
	}
	return voices, nil
}
