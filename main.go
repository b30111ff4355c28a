// Package main provides the entry point for the hark CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/hark/internal/engines"
	"github.com/charmbracelet/hark/internal/source"
	"github.com/charmbracelet/hark/tts"
	"github.com/charmbracelet/hark/ui"
	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile   string
	engineName   string
	fallbackName string
	inboxDir     string
	style        string
	mouse        bool
	noCache      bool

	rootCmd = &cobra.Command{
		Use:   "hark [FILE...]",
		Short: "Read the clipboard aloud, one highlighted word at a time",
		Long: paragraph(
			fmt.Sprintf("\nRead the clipboard, dropped files or piped text %s, highlighting each word as it is spoken.", keyword("aloud")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.ArbitraryArgs,
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		style, _ = homedir.Expand(style)
		if _, err := os.Stat(style); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config %s: %w", configFile, err)
		}
	}

	// grab config values from Viper
	engineName = viper.GetString("engine")
	fallbackName = viper.GetString("fallback")
	inboxDir = viper.GetString("inbox")
	mouse = viper.GetBool("mouse")
	style = viper.GetString("style")

	if !slices.Contains(engines.Names(), engineName) {
		return fmt.Errorf("unknown engine %q, want one of %s", engineName, strings.Join(engines.Names(), ", "))
	}
	if fallbackName != "" && !slices.Contains(engines.Names(), fallbackName) {
		return fmt.Errorf("unknown fallback engine %q", fallbackName)
	}
	if viper.GetDuration("rate_debounce") <= 0 {
		return fmt.Errorf("rate_debounce must be positive, got %s", viper.GetString("rate_debounce"))
	}

	if err := validateStyle(style); err != nil {
		return err
	}
	if cmd.Flags().Changed("debug") || viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// readInput collects text from file arguments or a piped stdin. It returns
// an empty string when neither is given.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		text, skipped := source.ReadDropped(strings.Join(args, "\n"))
		for _, s := range skipped {
			fmt.Fprintln(os.Stderr, "skipped", s)
		}
		if strings.TrimSpace(text) == "" {
			return "", errors.New("no readable text in the given files")
		}
		return text, nil
	}

	if yes, err := stdinIsPipe(); err != nil {
		return "", err
	} else if yes {
		b, err := io.ReadAll(io.LimitReader(os.Stdin, source.MaxDroppedFileSize))
		if err != nil {
			return "", fmt.Errorf("unable to read from stdin: %w", err)
		}
		return string(b), nil
	}
	return "", nil
}

func execute(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	return a.run(ctx, func(ctrl *tts.Controller) error {
		return runTUI(ctx, ctrl, text)
	})
}

func runTUI(ctx context.Context, ctrl *tts.Controller, text string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or the configured one if unset
	if cfg.GlamourStyle == "" || validateStyle(cfg.GlamourStyle) != nil {
		cfg.GlamourStyle = style
	}
	cfg.EnableMouse = mouse
	cfg.InitialText = text

	var paths <-chan string
	if inboxDir != "" {
		inbox, err := source.NewInbox(inboxDir)
		if err != nil {
			return fmt.Errorf("unable to watch inbox: %w", err)
		}
		defer inbox.Close() //nolint:errcheck
		go inbox.Run(ctx)
		paths = inbox.Paths()
	}

	if _, err := ui.NewProgram(cfg, ctrl, paths).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVarP(&engineName, "engine", "e", "espeak", fmt.Sprintf("synthesis engine (%s)", strings.Join(engines.Names(), ", ")))
	rootCmd.PersistentFlags().StringVar(&fallbackName, "fallback", "", "engine to retry with when the primary engine fails")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "do not cache synthesized speech")
	rootCmd.PersistentFlags().Bool("debug", false, "log debug messages")
	rootCmd.Flags().StringVarP(&inboxDir, "inbox", "i", "", "watch a directory and read files created in it")
	rootCmd.Flags().StringVarP(&style, "style", "s", styles.AutoStyle, "preview style name or JSON path")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel in the preview")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("fallback", rootCmd.PersistentFlags().Lookup("fallback"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("inbox", rootCmd.Flags().Lookup("inbox"))
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	viper.SetDefault("engine", "espeak")
	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("rate_debounce", tts.DefaultRateDebounce)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.memory", 64)
	viper.SetDefault("cache.disk", 512)
	viper.SetDefault("cache.max_age", "168h")

	rootCmd.AddCommand(configCmd, manCmd, speakCmd, voicesCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "hark")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "hark")}, dirs...)
	}

	if c := os.Getenv("HARK_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("hark")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("hark")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "hark.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
