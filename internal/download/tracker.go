package download

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ytget/downbad/internal/launcher"
	"github.com/ytget/downbad/internal/model"
	"github.com/ytget/downbad/internal/progress"
)

// Tracker constants
const (
	RecordIDPrefix      = "dl-"
	ProgressLogInterval = 5 * time.Second
	logPrefixDownload   = "[DOWNLOAD]"
)

// entry is the tracker-private state of one record
type entry struct {
	rec         model.Record
	handle      launcher.Handle
	progressLog *rate.Sometimes
}

// Tracker owns the download records and applies process events to them.
// Records are independent; the map gives O(1) lookup by ID and order keeps
// insertion order for rendering.
type Tracker struct {
	mu       sync.RWMutex
	records  map[string]*entry
	order    []string
	launcher launcher.Launcher
	ctx      context.Context
	workDir  string
	onUpdate func(model.Record) // change signal for renderers
	metrics  Metrics
	expander PlaylistExpander
	estimate time.Duration
	now      func() time.Time
}

// NewTracker creates a tracker that starts downloads through l. Processes are
// bound to ctx and are killed when it is cancelled.
func NewTracker(ctx context.Context, l launcher.Launcher) *Tracker {
	return &Tracker{
		records:  make(map[string]*entry),
		launcher: l,
		ctx:      ctx,
		metrics:  noopMetrics{},
		now:      time.Now,
	}
}

// SetUpdateCallback sets the function called with a snapshot after every change
func (t *Tracker) SetUpdateCallback(callback func(model.Record)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onUpdate = callback
}

// SetMetrics sets the metrics sink
func (t *Tracker) SetMetrics(m Metrics) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if m == nil {
		m = noopMetrics{}
	}
	t.metrics = m
}

// SetPlaylistExpander enables playlist submissions
func (t *Tracker) SetPlaylistExpander(e PlaylistExpander) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expander = e
}

// SetWorkDir sets the working directory of launched processes
func (t *Tracker) SetWorkDir(dir string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.workDir = dir
}

// SetEstimateDuration sets the expected download time used for estimated
// progress; zero disables estimation
func (t *Tracker) SetEstimateDuration(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.estimate = d
}

// Submit validates the request, creates a queued record and asks the launcher
// to start the downloader. The returned record is the queued snapshot.
func (t *Tracker) Submit(url, folder string, wantVideo, wantAudio bool) (model.Record, error) {
	url = strings.TrimSpace(url)
	folder = strings.TrimSpace(folder)
	if err := validate(url, folder, wantVideo, wantAudio); err != nil {
		return model.Record{}, err
	}

	now := t.now()
	rec := model.Record{
		ID:        generateRecordID(),
		URL:       url,
		Folder:    folder,
		WantVideo: wantVideo,
		WantAudio: wantAudio,
		Status:    model.StatusQueued,
		Title:     model.TitlePlaceholder,
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.mu.Lock()
	t.records[rec.ID] = &entry{
		rec:         rec,
		progressLog: &rate.Sometimes{Interval: ProgressLogInterval},
	}
	t.order = append(t.order, rec.ID)
	callback, metrics, workDir := t.onUpdate, t.metrics, t.workDir
	t.mu.Unlock()

	log.Printf("%s %s: Added to queue - %s (%s)", logPrefixDownload, rec.ID, url, strings.Join(rec.MediaTokens(), "+"))
	metrics.RecordSubmitted()
	if callback != nil {
		callback(rec)
	}

	argv := append([]string{url, folder}, rec.MediaTokens()...)
	t.launch(rec.ID, argv, workDir)

	return rec, nil
}

// SubmitPlaylist submits one record per playlist entry, or a single record
// when url is not a playlist
func (t *Tracker) SubmitPlaylist(ctx context.Context, url, folder string, wantVideo, wantAudio bool) ([]model.Record, error) {
	url = strings.TrimSpace(url)
	if err := validate(url, strings.TrimSpace(folder), wantVideo, wantAudio); err != nil {
		return nil, err
	}

	t.mu.RLock()
	expander := t.expander
	t.mu.RUnlock()

	if expander == nil || !expander.IsPlaylistURL(url) {
		rec, err := t.Submit(url, folder, wantVideo, wantAudio)
		if err != nil {
			return nil, err
		}
		return []model.Record{rec}, nil
	}

	playlist, err := expander.Expand(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to expand playlist: %w", err)
	}
	if len(playlist.Entries) == 0 {
		return nil, fmt.Errorf("playlist has no videos: %s", url)
	}

	records := make([]model.Record, 0, len(playlist.Entries))
	for _, videoURL := range playlist.URLs() {
		rec, err := t.Submit(videoURL, folder, wantVideo, wantAudio)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// launch starts the process and records the launch outcome
func (t *Tracker) launch(id string, argv []string, workDir string) {
	h, err := t.launcher.Launch(t.ctx, argv, workDir, &recordSink{tracker: t, id: id})
	if err != nil {
		log.Printf("%s %s: Failed to start downloader: %v", logPrefixDownload, id, err)
		t.finish(id, model.StatusError, err.Error())
		return
	}
	t.markLaunched(id, h)
}

// markLaunched moves a queued record to downloading once the launcher accepted it
func (t *Tracker) markLaunched(id string, h launcher.Handle) {
	t.mu.Lock()
	e, ok := t.records[id]
	if !ok {
		t.mu.Unlock()
		log.Printf("%s %s: Record removed before launch completed", logPrefixDownload, id)
		return
	}

	if e.rec.Status == model.StatusCancelled {
		t.mu.Unlock()
		t.terminate(id, h)
		return
	}

	if e.rec.Status != model.StatusQueued {
		// The process already finished before Launch returned.
		t.mu.Unlock()
		return
	}

	e.handle = h
	e.rec.Status = model.StatusDownloading
	e.rec.StartedAt = t.now()
	e.rec.UpdatedAt = e.rec.StartedAt
	snapshot, callback, metrics := e.rec, t.onUpdate, t.metrics
	t.mu.Unlock()

	log.Printf("%s %s: Downloader started, PID: %d", logPrefixDownload, id, h.PID())
	metrics.RecordStarted()
	if callback != nil {
		callback(snapshot)
	}
}

// OnOutputLine applies one stdout line of the downloader to the record
func (t *Tracker) OnOutputLine(id, line string) {
	u := progress.ParseLine(line)

	t.mu.Lock()
	metrics := t.metrics
	e, ok := t.records[id]
	if !ok || !e.rec.Status.IsActive() {
		t.mu.Unlock()
		return
	}

	changed := applyUpdate(&e.rec, u)
	if changed {
		e.rec.UpdatedAt = t.now()
	}
	snapshot, callback, sometimes := e.rec, t.onUpdate, e.progressLog
	t.mu.Unlock()

	metrics.RecordLine(!u.Empty())
	if !changed {
		return
	}

	if u.HasPercent {
		sometimes.Do(func() {
			log.Printf("%s %s: Progress %.1f%% %s", logPrefixDownload, id, snapshot.Progress, snapshot.Speed)
		})
	}
	if callback != nil {
		callback(snapshot)
	}
}

// applyUpdate copies matched fields into rec and reports whether anything changed
func applyUpdate(rec *model.Record, u progress.Update) bool {
	changed := false

	if u.Title != "" && u.Title != rec.Title {
		rec.Title = u.Title
		changed = true
	}
	if u.HasPercent && (u.Percent != rec.Progress || rec.ProgressMode != model.ProgressParsed) {
		rec.Progress = u.Percent
		rec.ProgressMode = model.ProgressParsed
		changed = true
	}
	if u.Speed != "" && u.Speed != rec.Speed {
		rec.Speed = u.Speed
		changed = true
	}
	if u.ETA != "" && u.ETA != rec.ETA {
		rec.ETA = u.ETA
		changed = true
	}
	if u.Stage != "" && u.Stage != rec.Stage {
		rec.Stage = u.Stage
		changed = true
	}

	return changed
}

// OnProcessExit records the exit of the downloader. Records already in a
// terminal state ignore it.
func (t *Tracker) OnProcessExit(id string, exitCode int, stderr string) {
	if exitCode == 0 {
		t.finish(id, model.StatusComplete, "")
		return
	}

	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = DefaultProcessFailure
	}
	log.Printf("%s %s: Downloader exited with code %d", logPrefixDownload, id, exitCode)
	t.finish(id, model.StatusError, msg)
}

// finish moves an active record into a terminal status
func (t *Tracker) finish(id string, status model.Status, errMsg string) {
	t.mu.Lock()
	e, ok := t.records[id]
	if !ok || e.rec.Status.IsTerminal() {
		t.mu.Unlock()
		return
	}

	now := t.now()
	prev := e.rec.Status
	e.rec.Status = status
	e.rec.FinishedAt = now
	e.rec.UpdatedAt = now
	e.handle = nil
	switch status {
	case model.StatusComplete:
		e.rec.Progress = 100
		e.rec.ProgressMode = model.ProgressParsed
	case model.StatusError:
		e.rec.ErrorMessage = errMsg
	}
	snapshot, callback, metrics := e.rec, t.onUpdate, t.metrics
	t.mu.Unlock()

	elapsed := time.Duration(0)
	if !snapshot.StartedAt.IsZero() {
		elapsed = snapshot.FinishedAt.Sub(snapshot.StartedAt)
	}

	log.Printf("%s %s: Finished with status %s - %s", logPrefixDownload, id, status, snapshot.GetDisplayTitle())
	metrics.RecordFinished(prev, status, elapsed)
	if callback != nil {
		callback(snapshot)
	}
}

// Cancel marks an active record cancelled and terminates its process.
// Cancelling a finished record is a no-op.
func (t *Tracker) Cancel(id string) error {
	t.mu.Lock()
	e, ok := t.records[id]
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if e.rec.Status.IsTerminal() {
		t.mu.Unlock()
		return nil
	}

	now := t.now()
	prev := e.rec.Status
	e.rec.Status = model.StatusCancelled
	e.rec.FinishedAt = now
	e.rec.UpdatedAt = now
	h := e.handle
	e.handle = nil
	snapshot, callback, metrics := e.rec, t.onUpdate, t.metrics
	t.mu.Unlock()

	log.Printf("%s %s: Download cancelled", logPrefixDownload, id)
	metrics.RecordFinished(prev, model.StatusCancelled, 0)
	if callback != nil {
		callback(snapshot)
	}

	if h != nil {
		t.terminate(id, h)
	}
	return nil
}

func (t *Tracker) terminate(id string, h launcher.Handle) {
	if err := h.Terminate(); err != nil {
		log.Printf("%s %s: Failed to terminate downloader: %v", logPrefixDownload, id, err)
	}
}

// Remove deletes the record. Unknown IDs are ignored and a running process is
// left alone; its later events are dropped.
func (t *Tracker) Remove(id string) {
	t.mu.Lock()
	e, ok := t.records[id]
	if !ok {
		t.mu.Unlock()
		return
	}
	delete(t.records, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	status, metrics := e.rec.Status, t.metrics
	t.mu.Unlock()

	log.Printf("%s %s: Removed (%s)", logPrefixDownload, id, status)
	metrics.RecordRemoved(status)
}

// Get returns a snapshot of one record
func (t *Tracker) Get(id string) (model.Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.records[id]
	if !ok {
		return model.Record{}, false
	}
	return e.rec, true
}

// List returns snapshots of all records in insertion order
func (t *Tracker) List() []model.Record {
	t.mu.RLock()
	defer t.mu.RUnlock()

	records := make([]model.Record, 0, len(t.order))
	for _, id := range t.order {
		records = append(records, t.records[id].rec)
	}
	return records
}

func validate(url, folder string, wantVideo, wantAudio bool) error {
	switch {
	case url == "":
		return &ValidationError{Field: FieldURL}
	case folder == "":
		return &ValidationError{Field: FieldFolder}
	case !wantVideo && !wantAudio:
		return &ValidationError{Field: FieldMedia}
	}
	return nil
}

// generateRecordID generates a unique record ID
func generateRecordID() string {
	return RecordIDPrefix + uuid.New().String()
}
