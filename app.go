package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/hark/internal/audio"
	"github.com/charmbracelet/hark/internal/cache"
	"github.com/charmbracelet/hark/internal/engines"
	"github.com/charmbracelet/hark/tts"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

// app holds everything a running controller needs.
type app struct {
	engine tts.Engine
	player *audio.Player
	store  *tts.Store
	ctrl   *tts.Controller
}

// configDir is the directory holding hark.yml.
func configDir() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return filepath.Dir(used)
	}
	return filepath.Dir(configFile)
}

// settingsPath places the persisted playback settings next to hark.yml.
func settingsPath() string {
	if configFile != "" || viper.ConfigFileUsed() != "" {
		return filepath.Join(configDir(), tts.SettingsFile)
	}
	path, err := tts.DefaultStorePath("hark")
	if err != nil {
		log.Warn("No config directory, settings go to the temp dir", "err", err)
		return filepath.Join(os.TempDir(), "hark", tts.SettingsFile)
	}
	return path
}

// loadEnvFile reads a .env file next to the config file. Variables already
// set in the environment win.
func loadEnvFile() {
	path := filepath.Join(configDir(), ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Warn("Could not read .env file", "path", path, "err", err)
		return
	}
	log.Debug("Loaded environment file", "path", path)
}

func engineOptions() (engines.Options, error) {
	loadEnvFile()

	var opts engines.Options
	if err := env.ParseWithOptions(&opts, env.Options{Prefix: "HARK_"}); err != nil {
		return opts, fmt.Errorf("error parsing engine settings: %w", err)
	}
	if opts.ElevenLabs.APIKey == "" {
		opts.ElevenLabs.APIKey = os.Getenv("ELEVENLABS_API_KEY")
	}
	return opts, nil
}

func openCache() (*cache.Store, error) {
	if noCache || !viper.GetBool("cache.enabled") {
		return nil, nil
	}

	cfg := cache.DefaultConfig()
	cfg.MemoryCapacity = viper.GetInt64("cache.memory") << 20
	cfg.DiskCapacity = viper.GetInt64("cache.disk") << 20
	cfg.MaxAge = viper.GetDuration("cache.max_age")

	dir, err := gap.NewScope(gap.User, "hark").CacheDir()
	if err != nil {
		log.Warn("No cache directory, caching in memory only", "err", err)
		cfg.DiskCapacity = 0
	} else {
		cfg.DiskPath = filepath.Join(dir, "speech")
	}

	store, err := cache.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to open cache: %w", err)
	}
	return store, nil
}

// buildEngine constructs the configured engine stack.
func buildEngine(ctx context.Context) (tts.Engine, error) {
	opts, err := engineOptions()
	if err != nil {
		return nil, err
	}
	store, err := openCache()
	if err != nil {
		return nil, err
	}

	engine, err := engines.Build(ctx, engineName, fallbackName, opts, store)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err //nolint:wrapcheck
	}
	log.Info("Engine ready", "engine", engine.Name(), "cache", store != nil)
	return engine, nil
}

// newApp builds the engine, enumerates voices, opens the audio device and
// loads persisted settings. Any failure here is fatal.
func newApp(ctx context.Context) (*app, error) {
	engine, err := buildEngine(ctx)
	if err != nil {
		return nil, err
	}

	catalog, err := tts.LoadCatalog(ctx, engine)
	if err != nil {
		_ = engine.Close()
		return nil, err //nolint:wrapcheck
	}
	log.Debug("Voices loaded", "count", catalog.Len())

	player, err := audio.NewPlayer(audio.DefaultPlayerConfig())
	if err != nil {
		_ = engine.Close()
		return nil, tts.NewTTSError(tts.ErrEngineUnavailable, "audio", "open").WithCause(err)
	}

	store := tts.NewStore(settingsPath())
	cfg, err := store.Load()
	if err != nil {
		log.Warn("Using default settings", "err", err)
	}

	ctrl, err := tts.NewController(engine, player, catalog, cfg,
		tts.WithRateDebounce(viper.GetDuration("rate_debounce")),
	)
	if err != nil {
		_ = player.Close()
		_ = engine.Close()
		return nil, err //nolint:wrapcheck
	}

	return &app{
		engine: engine,
		player: player,
		store:  store,
		ctrl:   ctrl,
	}, nil
}

// run drives the controller while fn runs, then persists the settings the
// controller ends with.
func (a *app) run(ctx context.Context, fn func(ctrl *tts.Controller) error) error {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan tts.Config, 1)
	go func() {
		done <- a.ctrl.Run(ctx)
	}()

	err := fn(a.ctrl)
	_ = a.ctrl.Send(tts.ShutdownRequested{})
	cancel()

	cfg := <-done
	if serr := a.store.Save(cfg); serr != nil {
		log.Warn("Could not save settings", "err", serr)
	}
	return err
}

func (a *app) Close() error {
	perr := a.player.Close()
	if err := a.engine.Close(); err != nil {
		return err //nolint:wrapcheck
	}
	return perr //nolint:wrapcheck
}
