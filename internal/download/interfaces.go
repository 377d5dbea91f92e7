package download

import (
	"context"
	"time"

	"github.com/ytget/downbad/internal/model"
)

// Downloader defines the interface of the download tracker used by the UI
// and the control API.
type Downloader interface {
	SetUpdateCallback(func(model.Record))
	Submit(url, folder string, wantVideo, wantAudio bool) (model.Record, error)
	SubmitPlaylist(ctx context.Context, url, folder string, wantVideo, wantAudio bool) ([]model.Record, error)
	Get(id string) (model.Record, bool)
	List() []model.Record
	Cancel(id string) error
	Remove(id string)
}

// PlaylistExpander turns a playlist URL into per-video URLs
type PlaylistExpander interface {
	IsPlaylistURL(url string) bool
	Expand(ctx context.Context, url string) (*model.Playlist, error)
}

// Metrics receives tracker lifecycle observations
type Metrics interface {
	RecordSubmitted()
	RecordStarted()
	RecordFinished(from, to model.Status, elapsed time.Duration)
	RecordRemoved(status model.Status)
	RecordLine(matched bool)
}

type noopMetrics struct{}

func (noopMetrics) RecordSubmitted()                                         {}
func (noopMetrics) RecordStarted()                                           {}
func (noopMetrics) RecordFinished(model.Status, model.Status, time.Duration) {}
func (noopMetrics) RecordRemoved(model.Status)                               {}
func (noopMetrics) RecordLine(bool)                                          {}
