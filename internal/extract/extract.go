// Package extract recovers playable video sources and caption tracks from
// embed pages that ship their source list AES-encrypted.
//
// The pipeline is strictly linear: fetch, locate, derive, decrypt, build.
// Each stage fails fast into a typed error wrapped in *Error; nothing is
// retried or cached.
package extract

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"kaizoku/internal/media"
)

// Extractor resolves embed URLs into video sources and subtitles.
type Extractor interface {
	Extract(ctx context.Context, embedURL string) (*media.Sources, error)
}

// Pipeline is the default Extractor. It holds no mutable state and is safe
// for concurrent use.
type Pipeline struct {
	fetcher *Fetcher
	log     logrus.FieldLogger
}

// New creates a Pipeline fetching through client, bounding each embed
// fetch by timeout.
func New(client *http.Client, timeout time.Duration, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		fetcher: NewFetcher(client, timeout),
		log:     log.WithField("component", "extract"),
	}
}

// Extract runs the full pipeline for one embed URL. On failure the returned
// error is an *Error naming the stage; the output is never partial.
func (p *Pipeline) Extract(ctx context.Context, embedURL string) (*media.Sources, error) {
	log := p.log.WithField("embed_host", hostOf(embedURL))

	doc, err := p.fetcher.Fetch(ctx, embedURL)
	if err != nil {
		return nil, &Error{Stage: StageFetch, Err: err}
	}

	raw, err := Locate(doc)
	if err != nil {
		return nil, &Error{Stage: StageLocate, Err: err}
	}
	log.WithFields(logrus.Fields{
		"chunks":     len(raw.CipherArray),
		"fragment_c": raw.FragmentC,
	}).Debug("payload located")

	km, err := Derive(raw.FragmentA, raw.FragmentB)
	if err != nil {
		return nil, &Error{Stage: StageDerive, Err: err}
	}

	payload, err := Decrypt(raw.CipherArray, km)
	if err != nil {
		return nil, &Error{Stage: StageDecrypt, Err: err}
	}

	out := Build(payload)
	log.WithFields(logrus.Fields{
		"sources":   len(out.Sources),
		"subtitles": len(out.Subtitles),
	}).Debug("sources extracted")

	return out, nil
}

// hostOf returns the host of rawURL for log fields, or "" if unparsable.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
