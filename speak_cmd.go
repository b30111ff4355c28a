package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/hark/internal/source"
	"github.com/charmbracelet/hark/tts"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	speakVoice  string
	speakVolume float64

	speakCmd = &cobra.Command{
		Use:     "speak [FILE...]",
		Short:   "Speak text without the interface",
		Long:    paragraph(fmt.Sprintf("\n%s files, piped text or the clipboard and print each word as it is read. Returns once the text has been spoken.", keyword("Speak"))),
		Example: paragraph("hark speak notes.md\necho hello | hark speak\nhark speak --voice en-gb"),
		Args:    cobra.ArbitraryArgs,
		RunE:    speak,
	}
)

func init() {
	speakCmd.Flags().StringVar(&speakVoice, "voice", "", "voice name to speak with")
	speakCmd.Flags().Float64Var(&speakVolume, "volume", -1, "volume between 0 and 1")
}

func speak(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}
	if text == "" {
		var ok bool
		if text, ok = source.Clipboard(); !ok {
			return errors.New("nothing to speak: no files, no piped input and the clipboard is empty")
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	return a.run(ctx, func(ctrl *tts.Controller) error {
		sent := ctrl.View().Handled
		if speakVoice != "" {
			i, ok := ctrl.Catalog().Index(speakVoice)
			if !ok {
				return fmt.Errorf("unknown voice %q, see hark voices", speakVoice)
			}
			if err := ctrl.Send(tts.VoiceChangeRequested{Index: i}); err != nil {
				return err //nolint:wrapcheck
			}
			sent++
		}
		if speakVolume >= 0 {
			if err := ctrl.Send(tts.VolumeChangeRequested{Volume: speakVolume}); err != nil {
				return err //nolint:wrapcheck
			}
			sent++
		}
		if err := ctrl.Send(tts.PlayRequested{Text: text}); err != nil {
			return err //nolint:wrapcheck
		}
		return followWords(ctx, ctrl.Updates(), sent+1, newWordPrinter(os.Stdout))
	})
}

// followWords prints words until the utterance ends. Play is the last of
// the sent commands, so once sent commands have been handled an idle
// controller has either finished or failed. Views are coalesced, so words
// are taken from the cue list up to the cursor rather than one per view.
// The controller must not have spoken before.
func followWords(ctx context.Context, views <-chan tts.View, sent uint64, p *wordPrinter) error {
	var (
		gen     uint64
		cues    []tts.WordCue
		printed int
	)
	flush := func(upto int) {
		for ; printed < upto && printed < len(cues); printed++ {
			p.word(cues[printed].Text)
		}
	}

	for {
		select {
		case <-ctx.Done():
			p.done()
			return nil

		case v, ok := <-views:
			if !ok {
				p.done()
				return nil
			}
			if len(v.Cues) > 0 && v.Generation != gen {
				gen, cues, printed = v.Generation, v.Cues, 0
			}
			if v.Generation == gen {
				flush(v.Cursor)
			}
			if v.Handled < sent || v.Synthesizing || v.State != tts.StateIdle {
				continue
			}
			if v.Spoken == 0 {
				p.done()
				return errors.New("nothing was spoken, see the log for details")
			}
			// ended: the words after the last seen cursor were spoken too
			flush(len(cues))
			p.done()
			return nil
		}
	}
}

// wordPrinter writes words inline and highlighted on a terminal, and one per
// line otherwise.
type wordPrinter struct {
	w       io.Writer
	out     *termenv.Output
	tty     bool
	printed bool
}

func newWordPrinter(f *os.File) *wordPrinter {
	return &wordPrinter{
		w:   f,
		out: termenv.NewOutput(f),
		tty: term.IsTerminal(int(f.Fd())), //nolint:gosec
	}
}

func (p *wordPrinter) word(w string) {
	if !p.tty {
		fmt.Fprintln(p.w, w)
		return
	}
	if p.printed {
		fmt.Fprint(p.w, " ")
	}
	fmt.Fprint(p.w, p.out.String(w).Foreground(p.out.Color("#04B575")).Bold())
	p.printed = true
}

func (p *wordPrinter) done() {
	if p.tty && p.printed {
		fmt.Fprintln(p.w)
	}
	p.printed = false
}
