package extract

import (
	"context"
	"errors"
	"fmt"
)

// Stage names one step of the extraction pipeline.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageLocate  Stage = "locate"
	StageDerive  Stage = "derive"
	StageDecrypt Stage = "decrypt"
)

// Error is the tagged failure returned by Pipeline.Extract. Err is one of
// the typed errors below.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction failed at %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// FetchError reports a network failure, timeout or non-2xx status while
// retrieving the embed page.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Timeout reports whether the fetch gave up because a deadline passed.
func (e *FetchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Err, &te) && te.Timeout()
}

// Field names one of the four lexical patterns the locator requires.
type Field string

const (
	FieldCipherArray Field = "cipherArray"
	FieldFragmentA   Field = "fragmentA"
	FieldFragmentB   Field = "fragmentB"
	FieldFragmentC   Field = "fragmentC"
)

// MissingFieldError reports that a required pattern is absent from the page.
type MissingFieldError struct {
	Field Field
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("embed page has no %s", e.Field)
}

// MalformedArrayError reports a cipher-text array that is not a JSON array
// of strings.
type MalformedArrayError struct {
	Err error
}

func (e *MalformedArrayError) Error() string {
	return fmt.Sprintf("malformed cipher-text array: %v", e.Err)
}

func (e *MalformedArrayError) Unwrap() error { return e.Err }

// InvalidKeyLengthError reports a key or IV fragment of the wrong byte width.
type InvalidKeyLengthError struct {
	Part string // "key" or "iv"
	Got  int
}

func (e *InvalidKeyLengthError) Error() string {
	if e.Part == "iv" {
		return fmt.Sprintf("invalid iv length %d, want 16", e.Got)
	}
	return fmt.Sprintf("invalid key length %d, want 16, 24 or 32", e.Got)
}

// DecryptionError reports cipher-text that does not decrypt cleanly: bad
// base64, misaligned blocks, invalid padding or non UTF-8 plaintext.
type DecryptionError struct {
	Reason string
	Err    error
}

func (e *DecryptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decryption failed: %s: %v", e.Reason, e.Err)
	}
	return "decryption failed: " + e.Reason
}

func (e *DecryptionError) Unwrap() error { return e.Err }

// MalformedJSONError reports plaintext that is not the expected
// {"sources": [...], "tracks": [...]} document.
type MalformedJSONError struct {
	Err error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed decrypted payload: %v", e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

// Kind returns the name of the typed error carried by err, for logs and the
// audit trail. It returns "" for nil and "unknown" for foreign errors.
func Kind(err error) string {
	if err == nil {
		return ""
	}

	var (
		fetchErr   *FetchError
		missingErr *MissingFieldError
		arrayErr   *MalformedArrayError
		keyErr     *InvalidKeyLengthError
		decryptErr *DecryptionError
		jsonErr    *MalformedJSONError
	)
	switch {
	case errors.As(err, &fetchErr):
		return "FetchError"
	case errors.As(err, &missingErr):
		return "MissingFieldError"
	case errors.As(err, &arrayErr):
		return "MalformedArrayError"
	case errors.As(err, &keyErr):
		return "InvalidKeyLengthError"
	case errors.As(err, &decryptErr):
		return "DecryptionError"
	case errors.As(err, &jsonErr):
		return "MalformedJsonError"
	default:
		return "unknown"
	}
}

// StageOf returns the pipeline stage that produced err, or "" when err did
// not come from the pipeline.
func StageOf(err error) Stage {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}
