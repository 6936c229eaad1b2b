package redis

import (
	"testing"

	"github.com/clubsupply/supplydesk-backend/pkg/config"
)

func TestBuildKeySkipsEmptyParts(t *testing.T) {
	c := &Client{}
	if got := c.RateLimitKey("login:email:a@b.c"); got != "sd:rate_limit:login:email:a@b.c" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := c.AccessSessionKey("abc"); got != "sd:session:access:abc" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := c.buildKey("", "x"); got != "sd:x" {
		t.Fatalf("empty parts should be skipped, got %q", got)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither url nor address set")
	}
}
