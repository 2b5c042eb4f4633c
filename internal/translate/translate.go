// Package translate is a best-effort wrapper around a machine translation
// backend. Every failure degrades to the original text.
package translate

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"

	"github.com/dgallion1/slidedit/internal/chunker"
	"github.com/dgallion1/slidedit/internal/schema"
)

// Func translates text from source to target language. Implementations may
// fail; the Adapter turns failures into passthrough.
type Func func(ctx context.Context, text, source, target string) (string, error)

// Options tune an Adapter. Zero values select defaults.
type Options struct {
	MaxChars    int // per backend request
	Concurrency int // fields translated at once
	Stats       *LatencyStats
	Logger      *slog.Logger
}

// Adapter wraps a Func with language checks, chunking, retries and
// per-field fallback.
type Adapter struct {
	fn          Func
	chunkCfg    chunker.Config
	concurrency int
	stats       *LatencyStats
	log         *slog.Logger
	backoff     func(attempt int) time.Duration
}

// New returns an Adapter over fn. A nil fn yields an adapter that returns
// every input unchanged.
func New(fn Func, opts Options) *Adapter {
	cfg := chunker.DefaultConfig()
	if opts.MaxChars > 0 {
		cfg.MaxChars = opts.MaxChars
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		fn:          fn,
		chunkCfg:    cfg,
		concurrency: opts.Concurrency,
		stats:       opts.Stats,
		log:         log,
		backoff:     Backoff,
	}
}

// Available reports whether a backend is configured.
func (a *Adapter) Available() bool {
	return a != nil && a.fn != nil
}

// SourceFor returns the language fields are translated from when target is
// requested: Slovenian for English output, English otherwise.
func SourceFor(target schema.Lang) schema.Lang {
	if target == schema.LangEN {
		return schema.LangSL
	}
	return schema.LangEN
}

// Text translates text, returning it unchanged when no backend is
// configured, the languages are invalid or equal, the text is blank, or
// the backend fails.
func (a *Adapter) Text(ctx context.Context, text, source, target string) string {
	if !a.Available() || strings.TrimSpace(text) == "" {
		return text
	}
	src, dst, ok := languagePair(source, target)
	if !ok {
		return text
	}

	var out strings.Builder
	for _, piece := range chunker.Split(text, a.chunkCfg) {
		lead, core, trail := splitSpace(piece)
		if core == "" {
			out.WriteString(piece)
			continue
		}
		translated, err := a.call(ctx, core, src, dst)
		if err != nil {
			a.log.Warn("translation failed, keeping original", "source", src, "target", dst, "chars", chunker.CharCount(text), "error", err)
			return text
		}
		out.WriteString(lead)
		out.WriteString(cleanOutput(core, translated))
		out.WriteString(trail)
	}
	return out.String()
}

// Fields translates every value of fields independently and returns a new
// map. A failing field keeps its original value; the others are unaffected.
func (a *Adapter) Fields(ctx context.Context, fields schema.FieldMap, source, target string) schema.FieldMap {
	out := fields.Clone()
	if !a.Available() {
		return out
	}
	if _, _, ok := languagePair(source, target); !ok {
		return out
	}

	type fieldResult struct {
		name string
		text string
	}
	results := make(chan fieldResult, len(fields))
	sem := make(chan struct{}, a.concurrency)

	pending := 0
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			continue
		}
		pending++
		sem <- struct{}{}
		go func(name, value string) {
			defer func() { <-sem }()
			results <- fieldResult{name: name, text: a.Text(ctx, value, source, target)}
		}(name, value)
	}

	for range pending {
		r := <-results
		out[r.name] = r.text
	}
	return out
}

// call sends one piece to the backend, retrying transient failures.
func (a *Adapter) call(ctx context.Context, text, source, target string) (string, error) {
	var out string
	var lastErr error
	for attempt := range MaxRetries {
		start := time.Now()
		out, lastErr = a.fn(ctx, text, source, target)
		a.record(time.Since(start), lastErr)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		if attempt == MaxRetries-1 {
			break
		}
		a.log.Debug("retryable translation error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(a.backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return out, lastErr
}

func (a *Adapter) record(d time.Duration, err error) {
	if a.stats == nil {
		return
	}
	if err != nil {
		a.stats.RecordFailure(d.Milliseconds())
		return
	}
	a.stats.Record(d.Milliseconds())
}

// languagePair validates both codes and reduces them to base languages.
// Pairs naming the same base language are rejected.
func languagePair(source, target string) (string, string, bool) {
	src, ok := baseLanguage(source)
	if !ok {
		return "", "", false
	}
	dst, ok := baseLanguage(target)
	if !ok || src == dst {
		return "", "", false
	}
	return src, dst, true
}

func baseLanguage(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	return base.String(), true
}

// splitSpace separates leading and trailing whitespace from the text
// between them.
func splitSpace(s string) (lead, core, trail string) {
	core = strings.TrimLeftFunc(s, unicode.IsSpace)
	lead = s[:len(s)-len(core)]
	trimmed := strings.TrimRightFunc(core, unicode.IsSpace)
	trail = core[len(trimmed):]
	return lead, trimmed, trail
}
