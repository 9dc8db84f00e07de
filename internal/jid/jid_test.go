package jid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		namespace Namespace
		local     string
	}{
		{"self", "me", Self, "me"},
		{"group", "120363123456@g.us", Group, "120363123456"},
		{"linked device", "3917077286968@lid", LinkedDevice, "3917077286968"},
		{"direct user", "242477344759810@s.whatsapp.net", DirectUser, "242477344759810"},
		{"bare number", "242477344759810", Unrecognized, "242477344759810"},
		{"empty", "", Unrecognized, ""},
		{"unknown server", "abc@broadcast", Unrecognized, "abc@broadcast"},
		{"me with suffix", "me@s.whatsapp.net", DirectUser, "me"},
		{"uppercase me", "ME", Unrecognized, "ME"},
		{"suffix only", "@g.us", Group, ""},
		{"suffix in middle", "x@g.us.example", Unrecognized, "x@g.us.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := Classify(tt.input)
			require.Equal(t, tt.namespace, id.Namespace)
			require.Equal(t, tt.local, id.Local)
			require.Equal(t, tt.input, id.Raw)
		})
	}
}

// TestClassifyFirstMatchWins guards the rule order: an identifier carrying
// two recognized suffixes is classified by the outermost one only.
func TestClassifyFirstMatchWins(t *testing.T) {
	id := Classify("123@lid@g.us")
	require.Equal(t, Group, id.Namespace)
	require.Equal(t, "123@lid", id.Local)

	id = Classify("123@g.us@lid")
	require.Equal(t, LinkedDevice, id.Namespace)
	require.Equal(t, "123@g.us", id.Local)
}

func TestRuleOrder(t *testing.T) {
	want := []Namespace{Group, LinkedDevice, DirectUser}
	require.Len(t, rules, len(want))
	for i, r := range rules {
		require.Equal(t, want[i], r.namespace, "rule %d (%s)", i, r.suffix)
	}
}

func TestIsUser(t *testing.T) {
	require.True(t, Classify("me").IsUser())
	require.True(t, Classify("1@s.whatsapp.net").IsUser())
	require.True(t, Classify("1@lid").IsUser())
	require.False(t, Classify("1@g.us").IsUser())
	require.False(t, Classify("1").IsUser())
}

func TestNamespaceString(t *testing.T) {
	require.Equal(t, "group", Group.String())
	require.Equal(t, "unrecognized", Namespace(42).String())
}
