package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetch(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>embed</html>"))
	}))
	defer ts.Close()

	doc, err := NewFetcher(ts.Client(), time.Second).Fetch(context.Background(), ts.URL+"/e-1/abc")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if doc.Body != "<html>embed</html>" {
		t.Errorf("Body = %q", doc.Body)
	}
	if doc.URL != ts.URL+"/e-1/abc" {
		t.Errorf("URL = %q", doc.URL)
	}
}

func TestFetchNon2xx(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusForbidden, http.StatusBadGateway} {
		ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		_, err := NewFetcher(ts.Client(), time.Second).Fetch(context.Background(), ts.URL)
		ts.Close()

		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("status %d: error = %v (%T), want *FetchError", code, err, err)
		}
		if fetchErr.StatusCode != code {
			t.Errorf("StatusCode = %d, want %d", fetchErr.StatusCode, code)
		}
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	_, err := NewFetcher(ts.Client(), 50*time.Millisecond).Fetch(context.Background(), ts.URL)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v (%T), want *FetchError", err, err)
	}
	if !fetchErr.Timeout() {
		t.Errorf("Timeout() = false for %v", fetchErr)
	}
}

func TestFetchRejectsPlainHTTP(t *testing.T) {
	_, err := NewFetcher(http.DefaultClient, time.Second).Fetch(context.Background(), "http://embed.example/e-1/abc")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v (%T), want *FetchError", err, err)
	}
}
