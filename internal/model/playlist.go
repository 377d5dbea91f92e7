package model

import (
	"time"
)

// PlaylistEntry represents a single video of an expanded playlist
type PlaylistEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Playlist represents a playlist expanded into per-video URLs
type Playlist struct {
	ID        string           `json:"id"`
	URL       string           `json:"url"`
	Entries   []*PlaylistEntry `json:"entries"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewPlaylist creates a new playlist instance
func NewPlaylist(id, url string) *Playlist {
	return &Playlist{
		ID:        id,
		URL:       url,
		Entries:   make([]*PlaylistEntry, 0),
		CreatedAt: time.Now(),
	}
}

// AddEntry appends an entry, skipping entries without a URL or with a duplicate ID
func (p *Playlist) AddEntry(entry *PlaylistEntry) {
	if entry == nil || entry.URL == "" {
		return
	}
	for _, e := range p.Entries {
		if entry.ID != "" && e.ID == entry.ID {
			return
		}
	}
	p.Entries = append(p.Entries, entry)
}

// URLs returns the entry URLs in playlist order
func (p *Playlist) URLs() []string {
	urls := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		urls = append(urls, e.URL)
	}
	return urls
}
