package platform

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/downbad/internal/model"
)

// Timeout constants
const (
	DefaultParseTimeout = 60 * time.Second
)

// URL parameters and separators
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// fetchAllItems asks the library for every playlist item
const fetchAllItems = 0

const logPrefixPlaylist = "[PLAYLIST]"

// fetchFunc returns the entries of a playlist by ID
type fetchFunc func(ctx context.Context, playlistID string) ([]*model.PlaylistEntry, error)

// YTDLPExpander expands YouTube playlist URLs into per-video URLs using the
// ytdlp library
type YTDLPExpander struct {
	timeout time.Duration
	fetch   fetchFunc
}

// NewYTDLPExpander creates a new playlist expander
func NewYTDLPExpander() *YTDLPExpander {
	return &YTDLPExpander{
		timeout: DefaultParseTimeout,
		fetch:   fetchWithLibrary,
	}
}

// SetTimeout sets the timeout for expansion
func (y *YTDLPExpander) SetTimeout(timeout time.Duration) {
	y.timeout = timeout
}

// IsPlaylistURL checks if the URL carries a playlist parameter
func (y *YTDLPExpander) IsPlaylistURL(url string) bool {
	return ExtractPlaylistID(url) != ""
}

// Expand fetches the playlist behind url
func (y *YTDLPExpander) Expand(ctx context.Context, url string) (*model.Playlist, error) {
	playlistID := ExtractPlaylistID(url)
	if playlistID == "" {
		return nil, fmt.Errorf("could not extract playlist ID from URL: %s", url)
	}

	if y.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.timeout)
		defer cancel()
	}

	entries, err := y.fetch(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	playlist := model.NewPlaylist(playlistID, url)
	for _, e := range entries {
		playlist.AddEntry(e)
	}

	log.Printf("%s %s: Expanded into %d videos", logPrefixPlaylist, playlistID, len(playlist.Entries))
	return playlist, nil
}

// ExtractPlaylistID extracts the playlist ID from various URL formats:
//   - https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID&index=1
//   - https://www.youtube.com/playlist?list=PLAYLIST_ID
func ExtractPlaylistID(url string) string {
	_, playlistPart, found := strings.Cut(url, PlaylistParam)
	if !found {
		return ""
	}
	playlistPart, _, _ = strings.Cut(playlistPart, ParamSeparator)
	return strings.TrimSpace(playlistPart)
}

// fetchWithLibrary lists playlist items through ytdlp
func fetchWithLibrary(ctx context.Context, playlistID string) ([]*model.PlaylistEntry, error) {
	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, fetchAllItems)
	if err != nil {
		return nil, err
	}

	entries := make([]*model.PlaylistEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, &model.PlaylistEntry{
			ID:    it.VideoID,
			Title: it.Title,
			URL:   fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
		})
	}
	return entries, nil
}
