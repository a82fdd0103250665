package subtitle

import (
	"testing"

	"kaizoku/internal/media"
)

func TestFilter(t *testing.T) {
	subs := []media.SubtitleTrack{
		{URL: "https://example.com/en.vtt", Kind: "captions", Label: "English"},
		{URL: "https://example.com/sdh.vtt", Kind: "captions", Label: "English - SDH"},
		{URL: "https://example.com/es.vtt", Kind: "captions", Label: "Spanish"},
		{URL: "https://example.com/fr.vtt", Kind: "captions", Label: "French"},
	}

	tests := []struct {
		lang     string
		expected int
	}{
		{"english", 2},
		{"ENGLISH", 2},
		{"spanish", 1},
		{"french", 1},
		{"german", 0},
		{"", 4},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			got := Filter(subs, tt.lang)
			if len(got) != tt.expected {
				t.Errorf("Filter(%q) returned %d subs, want %d", tt.lang, len(got), tt.expected)
			}
			if got == nil {
				t.Errorf("Filter(%q) returned nil", tt.lang)
			}
		})
	}
}

func TestFilterNil(t *testing.T) {
	if got := Filter(nil, ""); got == nil {
		t.Error("Filter(nil) should return an empty slice")
	}
}

func TestBestMatch(t *testing.T) {
	subs := []media.SubtitleTrack{
		{Label: "English - SDH", URL: "https://example.com/sdh.vtt"},
		{Label: "English", URL: "https://example.com/en.vtt"},
		{Label: "Spanish", URL: "https://example.com/es.vtt"},
	}

	// Should prefer non-SDH English
	best := BestMatch(subs, "english")
	if best == nil {
		t.Fatal("BestMatch returned nil for english")
	}
	if best.Label != "English" {
		t.Errorf("BestMatch preferred %q, want 'English' (non-SDH)", best.Label)
	}

	// Only SDH available
	best = BestMatch(subs[:1], "english")
	if best == nil || best.Label != "English - SDH" {
		t.Errorf("BestMatch = %+v, want the SDH track", best)
	}

	// No match
	if best := BestMatch(subs, "japanese"); best != nil {
		t.Error("BestMatch should return nil for unmatched language")
	}
}

func TestSelect(t *testing.T) {
	subs := []media.SubtitleTrack{
		{Label: "English - SDH", URL: "https://example.com/sdh.vtt", Kind: "captions", Default: true},
		{Label: "English", URL: "https://example.com/en.vtt", Kind: "captions"},
		{Label: "Spanish", URL: "https://example.com/es.vtt", Kind: "captions"},
	}

	got := Select(subs, "english")
	if len(got) != 2 {
		t.Fatalf("Select() returned %d tracks, want 2", len(got))
	}
	if got[0].Default {
		t.Error("SDH track should lose the default flag")
	}
	if !got[1].Default {
		t.Error("non-SDH English track should be the default")
	}
	if !subs[0].Default {
		t.Error("Select() must not modify its input")
	}

	if all := Select(subs, ""); len(all) != 3 || !all[0].Default {
		t.Errorf("Select() without language = %+v, want input untouched", all)
	}
}
