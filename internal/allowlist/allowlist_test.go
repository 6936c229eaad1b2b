package allowlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clubsupply/supplydesk-backend/pkg/enums"
)

func TestParseWithHeaderAndComments(t *testing.T) {
	input := strings.NewReader(`email,role
# coordinators
alice@club.example,user
Bob@Club.example,bosslevel
`)
	list, err := Parse(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if list.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", list.Len())
	}

	role, ok := list.Lookup("alice@club.example")
	if !ok || role != enums.UserRoleUser {
		t.Fatalf("alice lookup: %v %v", role, ok)
	}
	// lookup normalizes case
	role, ok = list.Lookup("BOB@club.example")
	if !ok || role != enums.UserRoleBosslevel {
		t.Fatalf("bob lookup: %v %v", role, ok)
	}
	if _, ok := list.Lookup("mallory@club.example"); ok {
		t.Fatal("unlisted email should not resolve")
	}
}

func TestParseRejectsUnknownRole(t *testing.T) {
	_, err := Parse(strings.NewReader("alice@club.example,admin\n"))
	if err == nil {
		t.Fatal("unknown role should fail")
	}
}

func TestParseRejectsMissingRole(t *testing.T) {
	_, err := Parse(strings.NewReader("alice@club.example\n"))
	if err == nil {
		t.Fatal("missing role should fail")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.csv")
	if err := os.WriteFile(path, []byte("alice@club.example,user\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	list, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := list.Lookup("alice@club.example"); !ok {
		t.Fatal("expected alice to be allow-listed")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("missing file should fail")
	}
}
