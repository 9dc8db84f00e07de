package search

import (
	"testing"

	"github.com/matheus3301/wppview/internal/message"
	"github.com/stretchr/testify/require"
)

func msgs(texts ...string) []message.Message {
	out := make([]message.Message, len(texts))
	for i, s := range texts {
		out[i] = message.Message{ID: s, DisplayText: s}
	}
	return out
}

func texts(ms []message.Message) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.DisplayText
	}
	return out
}

func TestFilter(t *testing.T) {
	in := msgs("Hello World", "goodbye", "say HELLO", "")

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"case insensitive", "hello", []string{"Hello World", "say HELLO"}},
		{"upper query", "WORLD", []string{"Hello World"}},
		{"no match", "xyz", []string{}},
		{"inner space", "o w", []string{"Hello World"}},
		{"leading space kept", " hello", []string{"say HELLO"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, texts(Filter(in, tt.query)))
		})
	}
}

func TestFilterBlankQueryIsIdentity(t *testing.T) {
	in := msgs("b", "a", "c")
	for _, q := range []string{"", " ", "\t\n"} {
		out := Filter(in, q)
		require.Equal(t, in, out)
		require.Same(t, &in[0], &out[0])
	}
}

func TestFilterSpecialCharacters(t *testing.T) {
	in := msgs("price (USD) is 5*3", "price USD is 53", "a.b", "axb", `back\slash`, "[x]+?")

	require.Equal(t, []string{"price (USD) is 5*3"}, texts(Filter(in, "(usd)")))
	require.Equal(t, []string{"price (USD) is 5*3"}, texts(Filter(in, "5*3")))
	require.Equal(t, []string{"a.b"}, texts(Filter(in, "a.b")))
	require.Equal(t, []string{`back\slash`}, texts(Filter(in, `\s`)))
	require.Equal(t, []string{"[x]+?"}, texts(Filter(in, "[x]+?")))
	require.Empty(t, Filter(in, "(("))
	require.Empty(t, Filter(in, "^price"))
}

func TestHighlight(t *testing.T) {
	e := New(Marker{})
	tests := []struct {
		name  string
		text  string
		query string
		want  string
	}{
		{"single", "Hello World", "world", "Hello <mark>World</mark>"},
		{"preserves casing", "HeLLo hello", "hello", "<mark>HeLLo</mark> <mark>hello</mark>"},
		{"non overlapping", "aaaa", "aa", "<mark>aa</mark><mark>aa</mark>"},
		{"leftmost first", "aaa", "aa", "<mark>aa</mark>a"},
		{"no match", "abc", "z", "abc"},
		{"blank query", "abc", "  ", "abc"},
		{"escapes text", "<b>bold</b> & more", "bold", "&lt;b&gt;<mark>bold</mark>&lt;/b&gt; &amp; more"},
		{"escapes match", "1 < 2", "<", "1 <mark>&lt;</mark> 2"},
		{"punctuation", "call f(x) then f(y)", "f(x)", "call <mark>f(x)</mark> then f(y)"},
		{"unicode", "Ação e AÇÃO", "ação", "<mark>Ação</mark> e <mark>AÇÃO</mark>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, e.Highlight(tt.text, tt.query))
		})
	}
}

func TestHighlightCustomMarker(t *testing.T) {
	e := New(Marker{Open: `<span class="hl">`, Close: "</span>"})
	require.Equal(t, `say <span class="hl">hi</span>`, e.Highlight("say hi", "HI"))
}

func TestMarkerValidate(t *testing.T) {
	tests := []struct {
		name    string
		marker  Marker
		wantErr bool
	}{
		{"default", DefaultMarker, false},
		{"quotes", Marker{Open: `"`, Close: `'`}, false},
		{"angle pair", Marker{Open: "<<", Close: ">>"}, false},
		{"empty", Marker{}, true},
		{"brackets", Marker{Open: "[", Close: "]"}, true},
		{"stars", Marker{Open: "**", Close: "**"}, true},
		{"entity only", Marker{Open: "&amp;", Close: "&amp;"}, true},
		{"open only", Marker{Open: "<b>"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.marker.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsafeMarker)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestUnsafeMarkerFallsBack covers text that contains a plain-text marker:
// the engine falls back to DefaultMarker and still round-trips.
func TestUnsafeMarkerFallsBack(t *testing.T) {
	for _, m := range []Marker{{Open: "[", Close: "]"}, {Open: "**", Close: "**"}} {
		e := New(m)
		require.Equal(t, DefaultMarker, e.Marker)

		text := "see [note] and **bold** here"
		marked := e.Highlight(text, "note")
		require.Equal(t, text, e.Strip(marked))
		require.Equal(t, []Segment{
			{Text: "see ["},
			{Text: "note", Match: true},
			{Text: "] and **bold** here"},
		}, e.Segments(marked))

		zero := Engine{Marker: m}
		require.Equal(t, text, zero.Strip(zero.Highlight(text, "bold")))
	}
}

func TestStripRoundTrip(t *testing.T) {
	e := New(Marker{})
	cases := []struct{ text, query string }{
		{"Hello World", "o"},
		{"<script>alert('x')</script>", "script"},
		{"a & b &amp; c", "&"},
		{"price (USD) is 5*3", "(usd)"},
		{"mark <mark> inside", "mark"},
		{"no match here", "zzz"},
		{"", "x"},
		{"emoji 👍 ok", "👍"},
	}
	for _, c := range cases {
		marked := e.Highlight(c.text, c.query)
		require.Equal(t, c.text, e.Strip(marked), "text=%q query=%q", c.text, c.query)
	}
}

func TestMatches(t *testing.T) {
	require.Equal(t, []Range{{0, 2}, {3, 5}}, Matches("ab ab", "AB"))
	require.Nil(t, Matches("ab", ""))
	require.Empty(t, Matches("ab", "c"))
}

func TestSearch(t *testing.T) {
	e := New(Marker{})
	in := msgs("Meet at 5", "no", "meet me")

	hits := e.Search(in, "MEET")
	require.Len(t, hits, 2)
	require.Equal(t, "Meet at 5", hits[0].Message.DisplayText)
	require.Equal(t, "<mark>Meet</mark> at 5", hits[0].Highlighted)
	require.Equal(t, []Range{{0, 4}}, hits[0].Matches)
	require.Equal(t, "<mark>meet</mark> me", hits[1].Highlighted)
}

func TestSearchAgreesWithFilter(t *testing.T) {
	e := New(Marker{})
	in := msgs("Alpha", "beta", "ALPHABET", "gamma (alpha)", "")
	for _, q := range []string{"alpha", "a", "(", "bet", "zz"} {
		hits := e.Search(in, q)
		filtered := Filter(in, q)
		require.Len(t, hits, len(filtered), "query=%q", q)
		for i := range hits {
			require.Equal(t, filtered[i], hits[i].Message)
		}
	}
}

func TestSearchBlankQuery(t *testing.T) {
	e := New(Marker{})
	in := msgs("a<b", "c")
	hits := e.Search(in, "")
	require.Len(t, hits, 2)
	require.Equal(t, "a&lt;b", hits[0].Highlighted)
	require.Empty(t, hits[0].Matches)
}

func TestSearchNoHits(t *testing.T) {
	hits := New(Marker{}).Search(msgs("a"), "b")
	require.NotNil(t, hits)
	require.Empty(t, hits)
}

func TestSegments(t *testing.T) {
	e := New(Marker{})
	marked := e.Highlight("Tom & tom & co", "tom")
	require.Equal(t, []Segment{
		{Text: "Tom", Match: true},
		{Text: " & "},
		{Text: "tom", Match: true},
		{Text: " & co"},
	}, e.Segments(marked))

	require.Nil(t, e.Segments(""))
	require.Equal(t, []Segment{{Text: "a<b"}}, e.Segments("a&lt;b"))
	require.Equal(t, []Segment{{Text: "x"}, {Text: "open", Match: true}}, e.Segments("x<mark>open"))
}

func TestSegmentsCustomMarker(t *testing.T) {
	e := New(Marker{Open: "<<", Close: ">>"})
	require.Equal(t, []Segment{{Text: "say <<"}, {Text: "Hi", Match: true}, {Text: ">>"}},
		e.Segments(e.Highlight("say <<Hi>>", "hi")))
}
