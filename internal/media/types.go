// Package media defines shared types for the kaizoku API.
package media

// SearchResult represents a single catalog search result.
type SearchResult struct {
	ID       string `json:"id"`       // Title slug, e.g. "one-piece-100"
	Title    string `json:"title"`    // Display title
	Image    string `json:"image"`    // Poster URL
	Type     string `json:"type"`     // "TV", "Movie", "OVA", ...
	Duration string `json:"duration"` // e.g. "24m"
	Rating   string `json:"rating"`   // e.g. "18+", empty when unrated
}

// Info holds the metadata of one title together with its episode list.
type Info struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Image         string    `json:"image"`
	Description   string    `json:"description"`
	Genres        []string  `json:"genres"`
	Status        string    `json:"status"`
	TotalEpisodes int       `json:"totalEpisodes"`
	Episodes      []Episode `json:"episodes"`
}

// Episode represents one episode of a title.
type Episode struct {
	ID     string `json:"id"` // e.g. "one-piece-100?ep=2142"
	Title  string `json:"title"`
	Number int    `json:"number"`
}

// Server represents a streaming server option for an episode.
type Server struct {
	Name     string `json:"name"`     // e.g. "HD-1"
	Type     string `json:"type"`     // "sub", "dub" or "raw"
	ServerID string `json:"serverId"` // Feeds the sources lookup
}

// RecentEpisode is one entry of the recently updated list.
type RecentEpisode struct {
	ID            string `json:"id"`
	EpisodeID     string `json:"episodeId"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	Image         string `json:"image"`
}

// TopAiring is one entry of the top airing list.
type TopAiring struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Image  string   `json:"image"`
	Genres []string `json:"genres"`
}

// VideoSource is one playable rendition.
type VideoSource struct {
	URL      string `json:"url"`
	Quality  string `json:"quality"`  // e.g. "720p" or "auto"
	IsStream bool   `json:"isStream"` // true when URL is an HLS manifest
}

// SubtitleTrack is one caption track.
type SubtitleTrack struct {
	URL     string `json:"url"`
	Kind    string `json:"kind"`
	Label   string `json:"label,omitempty"` // e.g. "English"
	Default bool   `json:"default,omitempty"`
}

// Sources is the result of one extraction: both lists or nothing.
type Sources struct {
	Subtitles []SubtitleTrack `json:"subtitles"`
	Sources   []VideoSource   `json:"sources"`
}
