package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/clubsupply/supplydesk-backend/pkg/errors"
)

type samplePayload struct {
	Email string `json:"email" validate:"required,email"`
	Qty   int    `json:"qty" validate:"required,gt=0"`
}

func TestDecodeJSONBodyValid(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.example","qty":2}`))

	var payload samplePayload
	if err := DecodeJSONBody(req, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Email != "a@b.example" || payload.Qty != 2 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestDecodeJSONBodyPerFieldDetails(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"nope","qty":0}`))

	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	if err == nil {
		t.Fatal("expected validation error")
	}

	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected code %s", typed.Code())
	}

	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected per-field details, got %T", typed.Details())
	}
	// json tag names, not Go field names
	if _, ok := details["email"]; !ok {
		t.Fatalf("missing email detail: %v", details)
	}
	if _, ok := details["qty"]; !ok {
		t.Fatalf("missing qty detail: %v", details)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.example","qty":1,"extra":true}`))

	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected code %s", pkgerrors.As(err).Code())
	}
}

func TestDecodeJSONBodyMalformed(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{`))

	var payload samplePayload
	if err := DecodeJSONBody(req, &payload); err == nil {
		t.Fatal("expected error for malformed body")
	}
}
