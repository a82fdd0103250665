// Package provider defines the interface for catalog providers and the
// HiAnime implementation.
package provider

import (
	"context"
	"errors"

	"kaizoku/internal/media"
)

// ErrNotFound is returned when the catalog has no such title, episode or
// server.
var ErrNotFound = errors.New("not found")

// Provider is the interface that catalog providers must implement.
type Provider interface {
	// Search returns matching results for a query.
	Search(ctx context.Context, query string) ([]media.SearchResult, error)

	// Info returns metadata and the episode list for a title.
	Info(ctx context.Context, id string) (*media.Info, error)

	// Servers returns the streaming servers of an episode.
	Servers(ctx context.Context, episodeID string) ([]media.Server, error)

	// EmbedURL returns the embed page URL for a server.
	EmbedURL(ctx context.Context, serverID string) (string, error)

	// RecentEpisodes returns recently updated episodes.
	RecentEpisodes(ctx context.Context) ([]media.RecentEpisode, error)

	// TopAiring returns the currently top airing titles.
	TopAiring(ctx context.Context) ([]media.TopAiring, error)
}
