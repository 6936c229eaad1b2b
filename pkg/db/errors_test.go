package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{name: "nil", err: nil, want: false},
		{
			name: "postgres duplicate",
			err:  errors.New(`ERROR: duplicate key value violates unique constraint "uq_catalog_items_name"`),
			want: true,
		},
		{
			name:       "named constraint",
			err:        errors.New(`constraint uq_carts_requester violated`),
			constraint: "uq_carts_requester",
			want:       true,
		},
		{
			name: "sqlite duplicate",
			err:  errors.New("UNIQUE constraint failed: catalog_items.name"),
			want: true,
		},
		{name: "other error", err: errors.New("connection refused"), want: false},
	}

	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
			t.Fatalf("%s: expected %v got %v", tc.name, tc.want, got)
		}
	}
}
