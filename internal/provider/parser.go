package provider

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"kaizoku/internal/media"
)

// parseSearchResults extracts search results from a goquery document.
// Uses DOM parsing instead of regexes on raw HTML.
func parseSearchResults(doc *goquery.Document) []media.SearchResult {
	results := []media.SearchResult{}

	doc.Find(".flw-item").Each(func(_ int, s *goquery.Selection) {
		href := s.Find(".film-poster-ahref").AttrOr("href", "")
		result := media.SearchResult{
			ID:       extractID(href),
			Title:    strings.TrimSpace(s.Find(".film-name a").AttrOr("title", "")),
			Image:    s.Find(".film-poster-img").AttrOr("data-src", ""),
			Type:     strings.TrimSpace(s.Find(".fdi-item").First().Text()),
			Duration: strings.TrimSpace(s.Find(".fdi-item.fdi-duration").Text()),
			Rating:   strings.TrimSpace(s.Find(".fdi-item.fdi-rating").Text()),
		}

		if result.ID != "" {
			results = append(results, result)
		}
	})

	return results
}

// parseInfo extracts title metadata from a title page. Episodes are filled
// in separately from the episode list fragment.
func parseInfo(doc *goquery.Document, id string) *media.Info {
	info := &media.Info{
		ID:          id,
		Title:       strings.TrimSpace(doc.Find(".film-name.dynamic-name").First().Text()),
		Image:       doc.Find(".film-poster-img").First().AttrOr("src", ""),
		Description: strings.TrimSpace(doc.Find(".film-description .text").First().Text()),
		Genres:      []string{},
		Episodes:    []media.Episode{},
	}

	doc.Find(`.item-list a[href*="/genre/"]`).Each(func(_ int, s *goquery.Selection) {
		if g := strings.TrimSpace(s.Text()); g != "" {
			info.Genres = append(info.Genres, g)
		}
	})

	doc.Find(".item-title").Each(func(_ int, s *goquery.Selection) {
		head := s.Find(".item-head")
		if !strings.HasPrefix(strings.TrimSpace(head.Text()), "Status:") {
			return
		}
		info.Status = strings.TrimSpace(head.Next().Text())
	})

	return info
}

// internalID returns the numeric catalog ID carried by #wrapper.
func internalID(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("#wrapper").AttrOr("data-id", ""))
}

// parseEpisodes extracts episodes from the episode list fragment. Upstream
// lists the newest episode first; the result starts at episode 1.
func parseEpisodes(doc *goquery.Document) []media.Episode {
	episodes := []media.Episode{}

	doc.Find(".ss-list a").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}

		num, _ := strconv.Atoi(strings.TrimSpace(s.AttrOr("data-number", "")))
		episodes = append(episodes, media.Episode{
			ID:     lastSegment(href),
			Title:  strings.TrimSpace(s.AttrOr("title", "")),
			Number: num,
		})
	})

	for i, j := 0, len(episodes)-1; i < j; i, j = i+1, j-1 {
		episodes[i], episodes[j] = episodes[j], episodes[i]
	}
	return episodes
}

// parseServers extracts server options from the servers fragment.
func parseServers(doc *goquery.Document) []media.Server {
	servers := []media.Server{}

	doc.Find(".server-item").Each(func(_ int, s *goquery.Selection) {
		dataID, exists := s.Attr("data-id")
		if !exists {
			return
		}

		servers = append(servers, media.Server{
			Name:     strings.TrimSpace(s.Find("a").Text()),
			Type:     strings.TrimSpace(s.AttrOr("data-type", "")),
			ServerID: dataID,
		})
	})

	return servers
}

// parseRecentEpisodes extracts the recently updated list from the home page.
func parseRecentEpisodes(doc *goquery.Document) []media.RecentEpisode {
	results := []media.RecentEpisode{}

	doc.Find("#main-content .film_list-wrap .flw-item").Each(func(_ int, s *goquery.Selection) {
		href := s.Find(".film-poster-ahref").AttrOr("href", "")
		if href == "" {
			return
		}

		results = append(results, media.RecentEpisode{
			ID:            strings.TrimPrefix(href, "/"),
			EpisodeID:     lastSegment(href),
			EpisodeNumber: tickNumber(s),
			Title:         strings.TrimSpace(s.Find(".film-name a").AttrOr("title", "")),
			Image:         s.Find(".film-poster-img").AttrOr("data-src", ""),
		})
	})

	return results
}

// parseTopAiring extracts the top airing list.
func parseTopAiring(doc *goquery.Document) []media.TopAiring {
	results := []media.TopAiring{}

	doc.Find(".flw-item").Each(func(_ int, s *goquery.Selection) {
		href := s.Find(".film-poster-ahref").AttrOr("href", "")
		if href == "" {
			return
		}

		item := media.TopAiring{
			ID:     strings.TrimPrefix(href, "/"),
			Title:  strings.TrimSpace(s.Find(".film-name a").AttrOr("title", "")),
			Image:  s.Find(".film-poster-img").AttrOr("data-src", ""),
			Genres: []string{},
		}
		s.Find(".fd-infor .fdi-item").Each(func(_ int, g *goquery.Selection) {
			if text := strings.TrimSpace(g.Text()); text != "" {
				item.Genres = append(item.Genres, text)
			}
		})

		results = append(results, item)
	})

	return results
}

// tickNumber reads the latest episode number from the sub tick, falling
// back to the dub tick. It returns 0 when neither parses.
func tickNumber(s *goquery.Selection) int {
	for _, sel := range []string{".tick-item.tick-sub", ".tick-item.tick-dub"} {
		text := strings.TrimSpace(s.Find(sel).First().Text())
		text = strings.TrimSpace(strings.TrimPrefix(text, "Ep"))
		if n, err := strconv.Atoi(text); err == nil {
			return n
		}
	}
	return 0
}

// extractID extracts the title slug from a URL path.
// e.g., "/one-piece-100?ref=search" -> "one-piece-100"
func extractID(urlPath string) string {
	id := strings.TrimPrefix(urlPath, "/")
	if idx := strings.Index(id, "?"); idx != -1 {
		id = id[:idx]
	}
	return id
}

// lastSegment returns what follows the final slash, query included.
// e.g., "/watch/one-piece-100?ep=2142" -> "one-piece-100?ep=2142"
func lastSegment(urlPath string) string {
	if idx := strings.LastIndex(urlPath, "/"); idx != -1 {
		return urlPath[idx+1:]
	}
	return urlPath
}

// episodeNumber returns the numeric episode ID from either a bare number or
// an episode ID of the form "slug?ep=2142".
func episodeNumber(episodeID string) string {
	if idx := strings.Index(episodeID, "?ep="); idx != -1 {
		return episodeID[idx+len("?ep="):]
	}
	return episodeID
}
