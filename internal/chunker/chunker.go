// Package chunker splits long field values into pieces that fit a
// translation backend's request size limit.
//
// Pieces always concatenate back to the input exactly, so a caller can
// translate them one by one and join the results without losing line
// breaks or spacing.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Config controls chunking behavior.
type Config struct {
	MaxChars int // Upper bound on piece length, in characters.
}

// DefaultConfig stays under the 5000-character cap common to public
// translation services.
func DefaultConfig() Config {
	return Config{MaxChars: 4500}
}

// Split breaks text into pieces of at most cfg.MaxChars characters. Cuts
// prefer paragraph breaks, then line breaks, then sentence ends, then
// whitespace; a run with none of these is cut mid-word.
func Split(text string, cfg Config) []string {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultConfig().MaxChars
	}
	if text == "" {
		return nil
	}

	var pieces []string
	for CharCount(text) > cfg.MaxChars {
		window := prefix(text, cfg.MaxChars)
		cut := cutPoint(window)
		pieces = append(pieces, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		pieces = append(pieces, text)
	}
	return pieces
}

// CharCount returns the length of text in characters.
func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}

// prefix returns the first n characters of text.
func prefix(text string, n int) string {
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}

// cutPoint returns the byte offset in window after which to cut. It is
// always greater than zero.
func cutPoint(window string) int {
	if i := strings.LastIndex(window, "\n\n"); i > 0 {
		return i + 2
	}
	if i := strings.LastIndexByte(window, '\n'); i > 0 {
		return i + 1
	}
	if i := lastSentenceEnd(window); i > 0 {
		return i
	}
	if i := strings.LastIndexFunc(window, unicode.IsSpace); i > 0 {
		_, size := utf8.DecodeRuneInString(window[i:])
		return i + size
	}
	return len(window)
}

// lastSentenceEnd returns the offset just past the last ". ", "! " or "? "
// in window, or -1.
func lastSentenceEnd(window string) int {
	best := -1
	for _, sep := range []string{". ", "! ", "? "} {
		if i := strings.LastIndex(window, sep); i >= 0 && i+len(sep) > best {
			best = i + len(sep)
		}
	}
	return best
}
