package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/client"
	"github.com/shorlog-studio/internal/config"
	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/notify"
	"github.com/shorlog-studio/internal/wizard"
	"github.com/shorlog-studio/pkg/logger"
)

// session is one wizard run wired to the platform API
type session struct {
	cfg    *config.ClientConfig
	log    zerolog.Logger
	wizard *wizard.Wizard
	nav    *printNavigator
	stop   func()
}

// printNavigator prints where the browser would go
type printNavigator struct {
	baseURL string
	path    string
}

func (n *printNavigator) Navigate(path string) {
	n.path = path
	fmt.Printf("Open %s%s\n", n.baseURL, path)
}

func newSession() (*session, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("SHORLOG_TOKEN is required, mint one with `compose token --user <id>`")
	}
	return newSessionWith(cfg, logger.NewWithWriter(os.Stderr)), nil
}

// newSessionWith wires a wizard to the API described by cfg
func newSessionWith(cfg *config.ClientConfig, log zerolog.Logger) *session {
	bus := notify.NewBus()
	stop := bus.Subscribe(printToast)
	nav := &printNavigator{baseURL: cfg.BaseURL}

	w := wizard.New(wizard.Options{
		Backend:   client.New(cfg, log),
		Navigator: nav,
		Notifier:  bus,
		Logger:    &log,
	})
	return &session{cfg: cfg, log: log, wizard: w, nav: nav, stop: stop}
}

func (s *session) Close() {
	s.wizard.Close()
	s.stop()
}

func printToast(e notify.Event) {
	switch e.Kind {
	case notify.KindError:
		fmt.Fprintf(os.Stderr, "✗ %s\n", e.Message)
	case notify.KindSuccess:
		fmt.Fprintf(os.Stderr, "✓ %s\n", e.Message)
	default:
		fmt.Fprintf(os.Stderr, "• %s\n", e.Message)
	}
}

// composeOptions are the flags shared by `new` and `drafts resume`
type composeOptions struct {
	files     []string
	urls      []string
	ratios    []string
	moves     []string
	content   string
	tags      []string
	aiTags    bool
	saveDraft bool
	link      string
	skipLink  bool
}

func (o *composeOptions) stage(w *wizard.Wizard) error {
	parts := make([]models.FilePart, 0, len(o.files))
	for _, p := range o.files {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		parts = append(parts, models.FilePart{Name: baseName(p), Data: data})
	}
	if len(parts) > 0 {
		if added := w.AddFiles(parts); added < len(parts) {
			fmt.Fprintf(os.Stderr, "Only %d of %d files fit (max %d images)\n", added, len(parts), models.MaxFiles)
		}
	}
	if len(o.urls) > 0 {
		if added := w.AddRemoteURLs(o.urls); added < len(o.urls) {
			fmt.Fprintf(os.Stderr, "Only %d of %d urls fit (max %d images)\n", added, len(o.urls), models.MaxFiles)
		}
	}
	return nil
}

// edit applies --move and --ratio in that order. Ratio indexes refer to the
// order after moves.
func (o *composeOptions) edit(w *wizard.Wizard) error {
	for _, m := range o.moves {
		from, to, err := parsePair(m, ":")
		if err != nil {
			return fmt.Errorf("invalid --move %q: %w", m, err)
		}
		if err := w.ReorderImages(from, to); err != nil {
			return err
		}
	}

	for _, r := range o.ratios {
		idxStr, ratio, ok := strings.Cut(r, "=")
		if !ok {
			return fmt.Errorf("invalid --ratio %q, want INDEX=RATIO", r)
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return fmt.Errorf("invalid --ratio index %q", idxStr)
		}
		images := w.State().Images
		if idx < 0 || idx >= len(images) {
			return wizard.ErrIndexOutOfRange
		}
		if err := w.ChangeAspectRatio(images[idx].ID, models.AspectRatio(strings.ToUpper(ratio))); err != nil {
			return err
		}
	}
	return nil
}

// run drives the wizard from staged images to a published shorlog
func (o *composeOptions) run(ctx context.Context, s *session) error {
	w := s.wizard

	if err := o.edit(w); err != nil {
		return err
	}
	if err := w.Next(); err != nil {
		return err
	}
	render(w.View())

	if err := w.Advance(ctx); err != nil {
		return err
	}

	if o.content != "" {
		if err := w.SetContent(o.content); err != nil {
			return err
		}
	}
	for _, t := range o.tags {
		if err := w.AddHashtag(t); err != nil {
			return fmt.Errorf("hashtag %q: %w", t, err)
		}
	}
	if o.aiTags {
		added, err := w.SuggestHashtags(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Added %d suggested hashtags\n", added)
	}
	render(w.View())

	if o.saveDraft {
		draft, err := w.SaveDraft(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Saved draft %s\n", draft.ID)
		return nil
	}

	if err := w.Submit(ctx); err != nil {
		return err
	}
	return o.crossLink(ctx, w)
}

func (o *composeOptions) crossLink(ctx context.Context, w *wizard.Wizard) error {
	st := w.State()
	if st.Panel != wizard.PanelCrossLink {
		return nil
	}

	switch {
	case o.link != "":
		return w.LinkTo(ctx, o.link)
	case o.skipLink || len(st.Candidates) == 0:
		return w.SkipLink()
	}

	fmt.Println("Link this shorlog to one of your recent blogs:")
	for i, c := range st.Candidates {
		fmt.Printf("  [%d] %s  %s\n", i+1, c.ID, c.Title)
	}
	answer := prompt("Number to link, empty to skip: ")
	if answer == "" {
		return w.SkipLink()
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(st.Candidates) {
		w.Dismiss()
		return fmt.Errorf("invalid choice %q", answer)
	}
	return w.LinkTo(ctx, st.Candidates[n-1].ID)
}

func parsePair(s, sep string) (int, int, error) {
	a, b, ok := strings.Cut(s, sep)
	if !ok {
		return 0, 0, fmt.Errorf("want FROM%sTO", sep)
	}
	from, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, err
	}
	to, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
