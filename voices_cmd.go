package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/charmbracelet/hark/internal/engines"
	"github.com/charmbracelet/hark/tts"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	voicesAll bool

	voicesCmd = &cobra.Command{
		Use:     "voices",
		Short:   "List the voices an engine offers",
		Long:    paragraph(fmt.Sprintf("\n%s the voices of the configured engine. The voice in use is marked with an asterisk.", keyword("List"))),
		Example: paragraph("hark voices\nhark voices --engine piper\nhark voices --all"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if voicesAll {
				return listAllVoices(cmd.Context(), os.Stdout)
			}
			return listVoices(cmd.Context(), os.Stdout)
		},
	}
)

func init() {
	voicesCmd.Flags().BoolVarP(&voicesAll, "all", "a", false, "list the voices of every available engine")
}

func listVoices(ctx context.Context, w io.Writer) error {
	engine, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer engine.Close() //nolint:errcheck

	catalog, err := tts.LoadCatalog(ctx, engine)
	if err != nil {
		return err //nolint:wrapcheck
	}

	cfg, err := tts.NewStore(settingsPath()).Load()
	if err != nil {
		log.Warn("Using default settings", "err", err)
	}
	current := catalog.Reconcile(cfg.Voice)

	fmt.Fprintln(w, keyword(engine.Name()))
	for i, label := range catalog.Labels() {
		mark := " "
		if i == current {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s\n", mark, label)
	}
	return nil
}

// listAllVoices enumerates every real engine concurrently. Engines that are
// not installed or not configured are left out; the errgroup only fans out
// and never cancels the others.
func listAllVoices(ctx context.Context, w io.Writer) error {
	opts, err := engineOptions()
	if err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		results = map[string]*tts.Catalog{}
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range engines.Names() {
		if name == engines.MockName {
			continue
		}
		g.Go(func() error {
			engine, err := engines.New(gctx, name, opts)
			if err != nil {
				log.Debug("Engine unavailable", "engine", name, "err", err)
				return nil
			}
			defer engine.Close() //nolint:errcheck

			catalog, err := tts.LoadCatalog(gctx, engine)
			if err != nil {
				log.Debug("Engine has no voices", "engine", name, "err", err)
				return nil
			}
			mu.Lock()
			results[name] = catalog
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err //nolint:wrapcheck
	}

	if len(results) == 0 {
		return errors.New("no engine is available")
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	slices.Sort(names)

	for i, name := range names {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, keyword(name))
		for _, label := range results[name].Labels() {
			fmt.Fprintf(w, "  %s\n", label)
		}
	}
	return nil
}
