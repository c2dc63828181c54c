package service

import (
	"errors"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{"valid", "alice@x.com", nil},
		{"empty", "", ErrInvalidEmail},
		{"no_at", "alice.x.com", ErrInvalidEmail},
		{"leading_at", "@x.com", ErrInvalidEmail},
		{"trailing_at", "alice@", ErrInvalidEmail},
		{"contains_space", "alice smith@x.com", ErrInvalidEmail},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := validateEmail(test.email)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("validateEmail(%q): expected %v, got %v", test.email, test.wantErr, err)
			}
		})
	}
}
