package provider

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"kaizoku/internal/httputil"
	"kaizoku/internal/media"
)

// HiAnime implements the Provider interface for HiAnime-style catalogs.
type HiAnime struct {
	baseURL string // e.g., "https://hianime.bz"
	client  *http.Client
}

// NewHiAnime creates a provider for the catalog at base, a bare host such
// as "hianime.bz".
func NewHiAnime(base string, client *http.Client) *HiAnime {
	return &HiAnime{
		baseURL: "https://" + base,
		client:  client,
	}
}

// newWithBaseURL points the provider at a full base URL. Used by tests.
func newWithBaseURL(baseURL string, client *http.Client) *HiAnime {
	return &HiAnime{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Search returns matching results for a query.
func (h *HiAnime) Search(ctx context.Context, query string) ([]media.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query cannot be empty")
	}

	u := httputil.WithQuery(httputil.BuildURL(h.baseURL, "search"), url.Values{"keyword": {query}})
	doc, err := h.fetchDocument(ctx, u)
	if err != nil {
		return nil, errors.Wrapf(err, "searching for %q", query)
	}

	return parseSearchResults(doc), nil
}

// Info returns metadata and episodes for a title slug.
func (h *HiAnime) Info(ctx context.Context, id string) (*media.Info, error) {
	if err := httputil.ValidateID(id); err != nil {
		return nil, errors.Wrap(err, "invalid title ID")
	}

	doc, err := h.fetchDocument(ctx, httputil.BuildURL(h.baseURL, id))
	if err != nil {
		return nil, errors.Wrapf(err, "getting title %s", id)
	}

	internal := internalID(doc)
	if internal == "" {
		return nil, errors.Wrapf(ErrNotFound, "no internal ID for title %s", id)
	}
	if err := httputil.ValidateNumericID(internal); err != nil {
		return nil, errors.Wrap(err, "invalid internal ID")
	}

	info := parseInfo(doc, id)

	list, err := h.fetchFragment(ctx, httputil.BuildURL(h.baseURL, "ajax", "v2", "episode", "list", internal))
	if err != nil {
		return nil, errors.Wrapf(err, "getting episodes of %s", id)
	}
	info.Episodes = parseEpisodes(list)
	info.TotalEpisodes = len(info.Episodes)

	return info, nil
}

// Servers returns the streaming servers for an episode. episodeID is either
// numeric or of the form "slug?ep=2142".
func (h *HiAnime) Servers(ctx context.Context, episodeID string) ([]media.Server, error) {
	num := episodeNumber(episodeID)
	if err := httputil.ValidateNumericID(num); err != nil {
		return nil, errors.Wrap(err, "invalid episode ID")
	}

	u := httputil.WithQuery(httputil.BuildURL(h.baseURL, "ajax", "v2", "episode", "servers"), url.Values{"episodeId": {num}})
	doc, err := h.fetchFragment(ctx, u)
	if err != nil {
		return nil, errors.Wrap(err, "getting servers")
	}

	return parseServers(doc), nil
}

// EmbedURL returns the embed page URL for a server.
func (h *HiAnime) EmbedURL(ctx context.Context, serverID string) (string, error) {
	if err := httputil.ValidateNumericID(serverID); err != nil {
		return "", errors.Wrap(err, "invalid server ID")
	}

	u := httputil.WithQuery(httputil.BuildURL(h.baseURL, "ajax", "v2", "episode", "sources"), url.Values{"id": {serverID}})
	body, err := httputil.GetJSON(ctx, h.client, u)
	if err != nil {
		return "", errors.Wrap(err, "getting embed URL")
	}

	// {"type":"iframe","link":"https://...","server":4,"sources":[],"tracks":[]}
	link := strings.TrimSpace(gjson.GetBytes(body, "link").String())
	if link == "" {
		return "", errors.Wrapf(ErrNotFound, "no embed URL for server %s", serverID)
	}

	return link, nil
}

// RecentEpisodes returns recently updated episodes from the home page.
func (h *HiAnime) RecentEpisodes(ctx context.Context) ([]media.RecentEpisode, error) {
	doc, err := h.fetchDocument(ctx, httputil.BuildURL(h.baseURL, "home"))
	if err != nil {
		return nil, errors.Wrap(err, "getting recent episodes")
	}

	return parseRecentEpisodes(doc), nil
}

// TopAiring returns the top airing list.
func (h *HiAnime) TopAiring(ctx context.Context) ([]media.TopAiring, error) {
	doc, err := h.fetchDocument(ctx, httputil.BuildURL(h.baseURL, "top-airing"))
	if err != nil {
		return nil, errors.Wrap(err, "getting top airing")
	}

	return parseTopAiring(doc), nil
}

// fetchDocument fetches a URL and parses it into a goquery Document.
// A 404 maps to ErrNotFound.
func (h *HiAnime) fetchDocument(ctx context.Context, u string) (*goquery.Document, error) {
	resp, err := httputil.Get(ctx, h.client, u, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, httputil.MaxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "parsing HTML")
	}

	return doc, nil
}

// fetchFragment fetches an ajax endpoint whose JSON envelope carries an
// HTML fragment in its "html" field.
func (h *HiAnime) fetchFragment(ctx context.Context, u string) (*goquery.Document, error) {
	body, err := httputil.GetJSON(ctx, h.client, u)
	if err != nil {
		return nil, err
	}

	html := gjson.GetBytes(body, "html")
	if !html.Exists() {
		return nil, errors.New(`response has no "html" field`)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html.String()))
	if err != nil {
		return nil, errors.Wrap(err, "parsing HTML fragment")
	}

	return doc, nil
}
