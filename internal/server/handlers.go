package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"kaizoku/internal/audit"
	"kaizoku/internal/extract"
	"kaizoku/internal/httputil"
	"kaizoku/internal/media"
	"kaizoku/internal/provider"
	"kaizoku/internal/subtitle"
)

// Recorder stores extraction outcomes. *audit.Store implements it.
type Recorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Handlers contains all API handlers.
type Handlers struct {
	catalog   provider.Provider
	extractor extract.Extractor
	recorder  Recorder // nil disables auditing
	log       logrus.FieldLogger
}

// NewHandlers creates the API handlers. recorder may be nil.
func NewHandlers(catalog provider.Provider, extractor extract.Extractor, recorder Recorder, log logrus.FieldLogger) *Handlers {
	return &Handlers{
		catalog:   catalog,
		extractor: extractor,
		recorder:  recorder,
		log:       log.WithField("component", "api"),
	}
}

// RegisterRoutes registers all API routes.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /search", h.handleSearch)
	mux.HandleFunc("GET /info", h.handleInfo)
	mux.HandleFunc("GET /servers", h.handleServers)
	mux.HandleFunc("GET /sources", h.handleSources)
	mux.HandleFunc("GET /recent-episodes", h.handleRecentEpisodes)
	mux.HandleFunc("GET /top-airing", h.handleTopAiring)
}

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Welcome to Kaizoku-API!",
		"routes": map[string]string{
			"search":          "/search?q={query}",
			"info":            "/info?id={anime-id}",
			"servers":         "/servers?episodeId={episode-id}",
			"sources":         "/sources?id={server-id}",
			"recent-episodes": "/recent-episodes",
			"top-airing":      "/top-airing",
		},
	})
}

func (h *Handlers) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, `Search query "q" is required.`)
		return
	}

	results, err := h.catalog.Search(r.Context(), query)
	if err != nil {
		h.requestLog(r).WithError(err).Error("search failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch search results.")
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func (h *Handlers) handleInfo(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, `Anime ID "id" is required.`)
		return
	}
	if err := httputil.ValidateID(id); err != nil {
		writeError(w, http.StatusBadRequest, `Anime ID "id" is invalid.`)
		return
	}

	info, err := h.catalog.Info(r.Context(), id)
	switch {
	case errors.Is(err, provider.ErrNotFound):
		writeError(w, http.StatusNotFound, "Could not find internal ID.")
		return
	case err != nil:
		h.requestLog(r).WithError(err).WithField("id", id).Error("info failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch anime info.")
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (h *Handlers) handleServers(w http.ResponseWriter, r *http.Request) {
	episodeID := r.URL.Query().Get("episodeId")
	if episodeID == "" {
		writeError(w, http.StatusBadRequest, `Episode ID "episodeId" is required.`)
		return
	}

	servers, err := h.catalog.Servers(r.Context(), episodeID)
	if err != nil {
		h.requestLog(r).WithError(err).WithField("episode_id", episodeID).Error("servers failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch episode servers.")
		return
	}

	writeJSON(w, http.StatusOK, servers)
}

func (h *Handlers) handleSources(w http.ResponseWriter, r *http.Request) {
	serverID := r.URL.Query().Get("id")
	if serverID == "" {
		writeError(w, http.StatusBadRequest, `Server ID "id" is required.`)
		return
	}
	if err := httputil.ValidateNumericID(serverID); err != nil {
		writeError(w, http.StatusBadRequest, `Server ID "id" is invalid.`)
		return
	}

	log := h.requestLog(r).WithField("server_id", serverID)

	embedURL, err := h.catalog.EmbedURL(r.Context(), serverID)
	switch {
	case errors.Is(err, provider.ErrNotFound):
		writeError(w, http.StatusNotFound, "Could not find embed URL.")
		return
	case err != nil:
		log.WithError(err).Error("embed lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch sources.")
		return
	}

	out, err := h.extractor.Extract(r.Context(), embedURL)
	h.record(r, embedURL, out, err)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"stage": extract.StageOf(err),
			"kind":  extract.Kind(err),
		}).Error("source extraction failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch sources.")
		return
	}

	if lang := r.URL.Query().Get("lang"); lang != "" {
		out.Subtitles = subtitle.Select(out.Subtitles, lang)
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) handleRecentEpisodes(w http.ResponseWriter, r *http.Request) {
	results, err := h.catalog.RecentEpisodes(r.Context())
	if err != nil {
		h.requestLog(r).WithError(err).Error("recent episodes failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch recent episodes.")
		return
	}

	writeJSON(w, http.StatusOK, results)
}

func (h *Handlers) handleTopAiring(w http.ResponseWriter, r *http.Request) {
	results, err := h.catalog.TopAiring(r.Context())
	if err != nil {
		h.requestLog(r).WithError(err).Error("top airing failed")
		writeError(w, http.StatusInternalServerError, "Failed to fetch top airing anime.")
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// record writes the extraction outcome to the audit log. Failures are
// logged and never surface to the client.
func (h *Handlers) record(r *http.Request, embedURL string, out *media.Sources, err error) {
	if h.recorder == nil {
		return
	}

	e := audit.Outcome(embedURL, out, err)
	e.RequestID = RequestIDFrom(r.Context())

	if rerr := h.recorder.Record(context.WithoutCancel(r.Context()), e); rerr != nil {
		h.requestLog(r).WithError(rerr).Warn("audit write failed")
	}
}

func (h *Handlers) requestLog(r *http.Request) logrus.FieldLogger {
	return h.log.WithField("request_id", RequestIDFrom(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
