// Package subtitle narrows caption tracks to a preferred language.
package subtitle

import (
	"strings"

	"github.com/samber/lo"

	"kaizoku/internal/media"
)

// Filter returns tracks whose label matches the preferred language
// (case-insensitive substring). An empty language keeps every track.
// Order is preserved and the result is never nil.
func Filter(tracks []media.SubtitleTrack, language string) []media.SubtitleTrack {
	if tracks == nil {
		tracks = []media.SubtitleTrack{}
	}
	if language == "" {
		return tracks
	}

	lang := strings.ToLower(language)
	return lo.Filter(tracks, func(t media.SubtitleTrack, _ int) bool {
		return strings.Contains(strings.ToLower(t.Label), lang)
	})
}

// BestMatch returns the best matching track for the given language.
// Prefers a non-SDH match, then the first match.
func BestMatch(tracks []media.SubtitleTrack, language string) *media.SubtitleTrack {
	filtered := Filter(tracks, language)
	if len(filtered) == 0 {
		return nil
	}

	if best, ok := lo.Find(filtered, func(t media.SubtitleTrack) bool {
		return !strings.Contains(strings.ToLower(t.Label), "sdh")
	}); ok {
		return &best
	}

	return &filtered[0]
}

// Select filters tracks by language and flags the best match as the only
// default. Without a language the tracks are returned untouched.
func Select(tracks []media.SubtitleTrack, language string) []media.SubtitleTrack {
	filtered := Filter(tracks, language)
	if language == "" {
		return filtered
	}

	best := BestMatch(filtered, language)
	return lo.Map(filtered, func(t media.SubtitleTrack, _ int) media.SubtitleTrack {
		t.Default = best != nil && t.URL == best.URL
		return t
	})
}
