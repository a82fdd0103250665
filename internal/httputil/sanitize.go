package httputil

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	// validIDPattern matches catalog slugs such as "one-piece-100".
	validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9/_-]+$`)

	// numericIDPattern matches purely numeric IDs (episode and server IDs).
	numericIDPattern = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateURL checks that a URL is absolute, well-formed and uses HTTPS.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return errors.Wrap(err, "malformed URL")
	}
	if u.Scheme != "https" {
		return errors.Errorf("only HTTPS URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("URL has no host")
	}
	return nil
}

// ValidateID checks that a catalog ID contains only safe characters.
func ValidateID(id string) error {
	if id == "" {
		return errors.New("ID cannot be empty")
	}
	if len(id) > 256 {
		return errors.Errorf("ID too long: %d characters", len(id))
	}
	if !validIDPattern.MatchString(id) {
		return errors.Errorf("ID contains invalid characters: %q", id)
	}
	if strings.Contains(id, "..") {
		return errors.Errorf("ID contains path traversal: %q", id)
	}
	return nil
}

// ValidateNumericID checks that an ID is purely numeric.
func ValidateNumericID(id string) error {
	if id == "" {
		return errors.New("numeric ID cannot be empty")
	}
	if !numericIDPattern.MatchString(id) {
		return errors.Errorf("expected numeric ID, got %q", id)
	}
	return nil
}

// BuildURL constructs a URL from base and path components, encoding each path segment.
func BuildURL(base string, pathSegments ...string) string {
	u := strings.TrimRight(base, "/")
	for _, seg := range pathSegments {
		u += "/" + url.PathEscape(seg)
	}
	return u
}

// WithQuery appends encoded query parameters to a URL built by BuildURL.
func WithQuery(rawURL string, params url.Values) string {
	if len(params) == 0 {
		return rawURL
	}
	return rawURL + "?" + params.Encode()
}
