// Package search filters normalized messages by a literal, case-insensitive
// query and marks the matches for display.
package search

import (
	"errors"
	"html"
	"regexp"
	"strings"

	"github.com/matheus3301/wppview/internal/message"
)

// Marker wraps each highlighted match.
type Marker struct {
	Open  string
	Close string
}

// DefaultMarker is an HTML <mark> element.
var DefaultMarker = Marker{Open: "<mark>", Close: "</mark>"}

// ErrUnsafeMarker reports a marker that escaped message text could contain.
var ErrUnsafeMarker = errors.New("marker must be non-empty and contain one of < > \" '")

// Validate checks that neither side of m can appear in escaped text, so
// Strip and Segments find only the markers render wrote. HTML escaping
// removes < > " and ' from text, so each side must hold one of them.
func (m Marker) Validate() error {
	if !strings.ContainsAny(m.Open, escapedRunes) || !strings.ContainsAny(m.Close, escapedRunes) {
		return ErrUnsafeMarker
	}
	return nil
}

const escapedRunes = `<>"'`

// Range is a half-open byte range into a message's DisplayText.
type Range struct {
	Start int
	End   int
}

// Hit is a matching message with its highlighted text.
type Hit struct {
	Message     message.Message
	Highlighted string
	Matches     []Range
}

// Engine searches and highlights with a configured marker.
type Engine struct {
	Marker Marker
}

// New returns an Engine using m, or DefaultMarker when m is empty or
// fails Validate.
func New(m Marker) Engine {
	if m.Validate() != nil {
		m = DefaultMarker
	}
	return Engine{Marker: m}
}

// IsBlank reports whether query should be treated as no query at all.
func IsBlank(query string) bool {
	return strings.TrimSpace(query) == ""
}

// matcher compiles query as a case-insensitive literal. QuoteMeta leaves
// no metacharacters, so compilation cannot fail.
func matcher(query string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
}

// Filter returns the messages whose DisplayText contains query, ignoring
// case. A blank query returns msgs unchanged.
func Filter(msgs []message.Message, query string) []message.Message {
	if IsBlank(query) {
		return msgs
	}
	re := matcher(query)
	out := make([]message.Message, 0, len(msgs))
	for _, m := range msgs {
		if re.MatchString(m.DisplayText) {
			out = append(out, m)
		}
	}
	return out
}

// Matches returns the non-overlapping, leftmost-first match ranges of query in text.
func Matches(text, query string) []Range {
	if IsBlank(query) {
		return nil
	}
	locs := matcher(query).FindAllStringIndex(text, -1)
	ranges := make([]Range, 0, len(locs))
	for _, loc := range locs {
		ranges = append(ranges, Range{Start: loc[0], End: loc[1]})
	}
	return ranges
}

// Highlight returns text HTML-escaped with every match of query wrapped in
// the engine's marker. Matched text keeps its original casing.
func (e Engine) Highlight(text, query string) string {
	return e.render(text, Matches(text, query))
}

// Search filters msgs and highlights each hit. A blank query yields one
// hit per message with escaped, unmarked text.
func (e Engine) Search(msgs []message.Message, query string) []Hit {
	if IsBlank(query) {
		hits := make([]Hit, 0, len(msgs))
		for _, m := range msgs {
			hits = append(hits, Hit{Message: m, Highlighted: html.EscapeString(m.DisplayText)})
		}
		return hits
	}

	re := matcher(query)
	hits := make([]Hit, 0)
	for _, m := range msgs {
		locs := re.FindAllStringIndex(m.DisplayText, -1)
		if len(locs) == 0 {
			continue
		}
		ranges := make([]Range, len(locs))
		for i, loc := range locs {
			ranges[i] = Range{Start: loc[0], End: loc[1]}
		}
		hits = append(hits, Hit{
			Message:     m,
			Highlighted: e.render(m.DisplayText, ranges),
			Matches:     ranges,
		})
	}
	return hits
}

// Strip removes the engine's markers from marked and reverses the HTML
// escaping, giving back the original text.
func (e Engine) Strip(marked string) string {
	m := e.marker()
	if m.Open != "" {
		marked = strings.ReplaceAll(marked, m.Open, "")
	}
	if m.Close != "" {
		marked = strings.ReplaceAll(marked, m.Close, "")
	}
	return html.UnescapeString(marked)
}

// Segment is a run of unescaped text from a highlighted string.
type Segment struct {
	Text  string
	Match bool
}

// Segments splits marked into plain and matched runs so a renderer can
// apply its own styling. An unterminated marker matches to the end.
func (e Engine) Segments(marked string) []Segment {
	m := e.marker()
	var segs []Segment
	add := func(text string, match bool) {
		if text != "" {
			segs = append(segs, Segment{Text: html.UnescapeString(text), Match: match})
		}
	}
	for marked != "" {
		before, rest, ok := strings.Cut(marked, m.Open)
		add(before, false)
		if !ok {
			break
		}
		match, after, _ := strings.Cut(rest, m.Close)
		add(match, true)
		marked = after
	}
	return segs
}

func (e Engine) render(text string, ranges []Range) string {
	m := e.marker()
	var b strings.Builder
	b.Grow(len(text) + len(ranges)*(len(m.Open)+len(m.Close)))
	last := 0
	for _, r := range ranges {
		b.WriteString(html.EscapeString(text[last:r.Start]))
		b.WriteString(m.Open)
		b.WriteString(html.EscapeString(text[r.Start:r.End]))
		b.WriteString(m.Close)
		last = r.End
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}

func (e Engine) marker() Marker {
	if e.Marker.Validate() != nil {
		return DefaultMarker
	}
	return e.Marker
}
