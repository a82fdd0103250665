package extract

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.New("boom"), "unknown"},
		{&FetchError{URL: "https://x", StatusCode: 500}, "FetchError"},
		{&MissingFieldError{Field: FieldFragmentB}, "MissingFieldError"},
		{&MalformedArrayError{Err: errors.New("x")}, "MalformedArrayError"},
		{&InvalidKeyLengthError{Part: "key", Got: 3}, "InvalidKeyLengthError"},
		{&DecryptionError{Reason: "invalid padding"}, "DecryptionError"},
		{&MalformedJSONError{Err: errors.New("x")}, "MalformedJsonError"},
		{&Error{Stage: StageDecrypt, Err: &DecryptionError{Reason: "x"}}, "DecryptionError"},
		{fmt.Errorf("wrapped: %w", &Error{Stage: StageLocate, Err: &MissingFieldError{Field: FieldCipherArray}}), "MissingFieldError"},
	}

	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestStageOf(t *testing.T) {
	if got := StageOf(&Error{Stage: StageDerive, Err: &InvalidKeyLengthError{Part: "iv", Got: 3}}); got != StageDerive {
		t.Errorf("StageOf() = %q, want %q", got, StageDerive)
	}
	if got := StageOf(errors.New("other")); got != "" {
		t.Errorf("StageOf(foreign) = %q, want empty", got)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&MissingFieldError{Field: FieldFragmentA}, "embed page has no fragmentA"},
		{&InvalidKeyLengthError{Part: "iv", Got: 8}, "invalid iv length 8, want 16"},
		{&InvalidKeyLengthError{Part: "key", Got: 5}, "invalid key length 5, want 16, 24 or 32"},
		{&FetchError{URL: "https://x", StatusCode: 404}, "fetching https://x: unexpected status 404"},
		{&Error{Stage: StageFetch, Err: &FetchError{URL: "https://x", StatusCode: 404}}, "extraction failed at fetch: fetching https://x: unexpected status 404"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
