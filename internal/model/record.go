package model

import (
	"strings"
	"time"
)

// Media type tokens passed to the downloader
const (
	MediaVideo = "video"
	MediaAudio = "audio"
)

// TitlePlaceholder is shown until the downloader reports a title
const TitlePlaceholder = "Getting video info..."

// Record represents a single user-initiated download request
type Record struct {
	ID                string       `json:"id"`
	URL               string       `json:"url"`
	Folder            string       `json:"folder"`
	WantVideo         bool         `json:"video"`
	WantAudio         bool         `json:"audio"`
	Status            Status       `json:"status"`
	Title             string       `json:"title"`
	Progress          float64      `json:"progress"` // 0 to 100, parsed from output
	ProgressMode      ProgressMode `json:"progress_mode,omitempty"`
	EstimatedProgress float64      `json:"estimated_progress,omitempty"` // 0 to 100, elapsed-time guess
	Speed             string       `json:"speed,omitempty"`              // verbatim, e.g. "1.2MiB/s"
	ETA               string       `json:"eta,omitempty"`                // verbatim, e.g. "00:42"
	Stage             string       `json:"stage,omitempty"`
	ErrorMessage      string       `json:"error,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	StartedAt         time.Time    `json:"started_at,omitempty"`
	FinishedAt        time.Time    `json:"finished_at,omitempty"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// MediaTokens returns the media type arguments for the downloader
func (r *Record) MediaTokens() []string {
	tokens := make([]string, 0, 2)
	if r.WantVideo {
		tokens = append(tokens, MediaVideo)
	}
	if r.WantAudio {
		tokens = append(tokens, MediaAudio)
	}
	return tokens
}

// DisplayProgress returns the value to draw and whether it is an estimate
func (r *Record) DisplayProgress() (float64, bool) {
	if r.ProgressMode == ProgressEstimated {
		return r.EstimatedProgress, true
	}
	return r.Progress, false
}

// GetDisplayTitle returns the title, or the URL while the title is unknown
func (r *Record) GetDisplayTitle() string {
	if r.Title != "" && r.Title != TitlePlaceholder && !strings.HasPrefix(r.Title, "http") {
		return r.Title
	}
	if r.URL == "" {
		return r.Title
	}
	return r.URL
}
