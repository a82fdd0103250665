package extract

import (
	"net/url"
	"path"
	"strings"

	"github.com/samber/lo"

	"kaizoku/internal/media"
)

// captionKind is the only track kind surfaced as a subtitle.
const captionKind = "captions"

// Build reshapes a decrypted payload into the public output. Both lists keep
// upstream order and are never nil.
func Build(p *DecryptedPayload) *media.Sources {
	subtitles := lo.FilterMap(p.Tracks, func(t PayloadTrack, _ int) (media.SubtitleTrack, bool) {
		if t.Kind != captionKind {
			return media.SubtitleTrack{}, false
		}
		return media.SubtitleTrack{
			URL:     t.Location(),
			Kind:    t.Kind,
			Label:   t.Label,
			Default: t.Default,
		}, true
	})

	sources := lo.Map(p.Sources, func(s PayloadSource, _ int) media.VideoSource {
		return media.VideoSource{
			URL:      s.File,
			Quality:  s.Label,
			IsStream: IsStream(s.File),
		}
	})

	if subtitles == nil {
		subtitles = []media.SubtitleTrack{}
	}
	if sources == nil {
		sources = []media.VideoSource{}
	}

	return &media.Sources{Subtitles: subtitles, Sources: sources}
}

// IsStream reports whether rawURL points at an HLS manifest, judged only by
// the .m3u8 suffix of its path.
func IsStream(rawURL string) bool {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.EqualFold(path.Ext(p), ".m3u8")
}
