package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matheus3301/wppview/internal/config"
)

func TestFor(t *testing.T) {
	home, _ := os.UserHomeDir()
	got := For("main").Root
	want := filepath.Join(home, ".wppview", "sessions", "main")
	if got != want {
		t.Errorf("For(main).Root = %q, want %q", got, want)
	}
}

func TestPaths(t *testing.T) {
	p := In("/base", "test")
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"socket", p.Socket(), "/base/sessions/test/daemon.sock"},
		{"lock", p.Lock(), "/base/sessions/test/daemon.lock"},
		{"store", p.Store(), "/base/sessions/test/records.db"},
		{"device", p.Device(), "/base/sessions/test/session.db"},
		{"log", p.Log(), "/base/sessions/test/logs/wppviewd.log"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != filepath.FromSlash(tt.want) {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestEnsure(t *testing.T) {
	p := In(t.TempDir(), "test")
	if err := p.Ensure(); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(p.LogDir())
	if err != nil {
		t.Fatalf("log dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("log dir is not a directory")
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Errorf("perm = %o, want 0700", perm)
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "main", false},
		{"valid with numbers", "work123", false},
		{"valid with hyphen", "my-session", false},
		{"valid with underscore", "my_session", false},
		{"valid max length", strings.Repeat("a", 64), false},
		{"empty", "", true},
		{"uppercase", "Main", true},
		{"space", "my session", true},
		{"dot", "my.session", true},
		{"too long", strings.Repeat("a", 65), true},
		{"slash", "my/session", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("flag", &config.Config{DefaultSession: "cfg"}); got != "flag" {
		t.Errorf("flag should win, got %q", got)
	}
	if got := Resolve("", &config.Config{DefaultSession: "cfg"}); got != "cfg" {
		t.Errorf("config should win over default, got %q", got)
	}
	if got := Resolve("", nil); got != DefaultName {
		t.Errorf("got %q, want %q", got, DefaultName)
	}
}
