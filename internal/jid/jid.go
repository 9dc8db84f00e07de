// Package jid classifies WhatsApp identifiers by their namespace suffix.
package jid

import (
	"strings"

	"go.mau.fi/whatsmeow/types"
)

// Namespace is the kind of entity an identifier refers to.
type Namespace int

const (
	Unrecognized Namespace = iota
	DirectUser
	LinkedDevice
	Group
	Self
)

// SelfID is the literal identifier the data source uses for the local account.
const SelfID = "me"

func (n Namespace) String() string {
	switch n {
	case DirectUser:
		return "direct_user"
	case LinkedDevice:
		return "linked_device"
	case Group:
		return "group"
	case Self:
		return "self"
	default:
		return "unrecognized"
	}
}

// Identifier is a classified JID. Raw always holds the input unchanged.
type Identifier struct {
	Namespace Namespace
	Local     string
	Raw       string
}

type rule struct {
	suffix    string
	namespace Namespace
}

// rules are evaluated in order and the first match wins. Do not reorder:
// a later suffix may overlap an earlier one.
var rules = []rule{
	{"@" + types.GroupServer, Group},
	{"@" + types.HiddenUserServer, LinkedDevice},
	{"@" + types.DefaultUserServer, DirectUser},
}

// Classify maps a raw identifier to its namespace and local part.
// It never fails; unknown formats are returned as Unrecognized with the
// input as the local part.
func Classify(raw string) Identifier {
	if raw == SelfID {
		return Identifier{Namespace: Self, Local: SelfID, Raw: raw}
	}
	for _, r := range rules {
		if local, ok := strings.CutSuffix(raw, r.suffix); ok {
			return Identifier{Namespace: r.namespace, Local: local, Raw: raw}
		}
	}
	return Identifier{Namespace: Unrecognized, Local: raw, Raw: raw}
}

// IsUser reports whether the identifier refers to a person rather than a group.
func (id Identifier) IsUser() bool {
	switch id.Namespace {
	case DirectUser, LinkedDevice, Self:
		return true
	}
	return false
}

// String returns the original identifier.
func (id Identifier) String() string {
	return id.Raw
}
