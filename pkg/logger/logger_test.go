package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := context.Background()
	ctx = log.WithRequestID(ctx, "req-123")

	log.Error(ctx, "boom", errors.New("boom"))

	if !bytes.Contains(buf.Bytes(), []byte("\"request_id\"")) {
		t.Fatalf("expected request_id to be preserved; entry=%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("\"service\":\"test\"")) {
		t.Fatalf("expected service field; entry=%s", buf.String())
	}
}

func TestLoggerActorFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})

	ctx := log.WithUserID(context.Background(), "user-1")
	ctx = log.WithActorRole(ctx, "bosslevel")
	log.Info(ctx, "hello")

	if !bytes.Contains(buf.Bytes(), []byte("\"actor_role\":\"bosslevel\"")) {
		t.Fatalf("expected actor_role field; entry=%s", buf.String())
	}
}
