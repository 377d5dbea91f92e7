package download

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/downbad/internal/launcher"
	"github.com/ytget/downbad/internal/model"
)

type launchCall struct {
	argv []string
	dir  string
	sink launcher.Sink
}

type fakeHandle struct {
	pid        int
	terminated atomic.Int32
	done       chan struct{}
}

func (h *fakeHandle) PID() int              { return h.pid }
func (h *fakeHandle) Done() <-chan struct{} { return h.done }
func (h *fakeHandle) Terminate() error {
	h.terminated.Add(1)
	return nil
}

type fakeLauncher struct {
	mu      sync.Mutex
	calls   []launchCall
	handles []*fakeHandle
	err     error
}

func (l *fakeLauncher) Launch(_ context.Context, argv []string, dir string, sink launcher.Sink) (launcher.Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, launchCall{argv: argv, dir: dir, sink: sink})
	if l.err != nil {
		return nil, l.err
	}
	h := &fakeHandle{pid: 1000 + len(l.handles), done: make(chan struct{})}
	l.handles = append(l.handles, h)
	return h, nil
}

func (l *fakeLauncher) call(t *testing.T, i int) launchCall {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	require.Greater(t, len(l.calls), i)
	return l.calls[i]
}

func newTestTracker() (*Tracker, *fakeLauncher) {
	l := &fakeLauncher{}
	return NewTracker(context.Background(), l), l
}

func mustSubmit(t *testing.T, tr *Tracker) model.Record {
	t.Helper()
	rec, err := tr.Submit("https://www.youtube.com/watch?v=abc", "/tmp/downloads", true, false)
	require.NoError(t, err)
	return rec
}

func mustGet(t *testing.T, tr *Tracker, id string) model.Record {
	t.Helper()
	rec, ok := tr.Get(id)
	require.True(t, ok, "record %s not found", id)
	return rec
}

func TestSubmit_Valid(t *testing.T) {
	tr, l := newTestTracker()

	rec, err := tr.Submit(" https://youtu.be/abc ", "/tmp/downloads", true, true)
	require.NoError(t, err)

	assert.Equal(t, model.StatusQueued, rec.Status)
	assert.True(t, strings.HasPrefix(rec.ID, RecordIDPrefix))
	assert.Equal(t, "https://youtu.be/abc", rec.URL)
	assert.Equal(t, model.TitlePlaceholder, rec.Title)

	call := l.call(t, 0)
	assert.Equal(t, []string{"https://youtu.be/abc", "/tmp/downloads", "video", "audio"}, call.argv)

	stored := mustGet(t, tr, rec.ID)
	assert.Equal(t, model.StatusDownloading, stored.Status)
	assert.False(t, stored.StartedAt.IsZero())
}

func TestSubmit_MediaTokens(t *testing.T) {
	tests := []struct {
		name         string
		video, audio bool
		expected     []string
	}{
		{"video only", true, false, []string{"u", "/f", "video"}},
		{"audio only", false, true, []string{"u", "/f", "audio"}},
		{"both", true, true, []string{"u", "/f", "video", "audio"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, l := newTestTracker()
			_, err := tr.Submit("u", "/f", tt.video, tt.audio)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, l.call(t, 0).argv)
		})
	}
}

func TestSubmit_UniqueIDs(t *testing.T) {
	tr, _ := newTestTracker()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		rec := mustSubmit(t, tr)
		assert.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		seen[rec.ID] = true
	}
	assert.Len(t, tr.List(), 50)
}

func TestSubmit_Invalid(t *testing.T) {
	tests := []struct {
		name         string
		url, folder  string
		video, audio bool
		field        string
	}{
		{"empty url", "", "/tmp", true, false, FieldURL},
		{"blank url", "   ", "/tmp", true, false, FieldURL},
		{"empty folder", "https://youtu.be/x", "", true, false, FieldFolder},
		{"no media", "https://youtu.be/x", "/tmp", false, false, FieldMedia},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, l := newTestTracker()
			mustSubmit(t, tr)
			before := len(tr.List())

			_, err := tr.Submit(tt.url, tt.folder, tt.video, tt.audio)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
			assert.Len(t, tr.List(), before)
			assert.Len(t, l.calls, 1)
		})
	}
}

func TestSubmit_LaunchFailure(t *testing.T) {
	tr, l := newTestTracker()
	l.err = &launcher.LaunchError{Path: "python3", Err: errors.New("executable file not found in $PATH")}

	rec, err := tr.Submit("https://youtu.be/x", "/tmp", false, true)
	require.NoError(t, err)
	assert.Equal(t, model.StatusQueued, rec.Status)

	stored := mustGet(t, tr, rec.ID)
	assert.Equal(t, model.StatusError, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "executable file not found")
}

func TestSubmit_UsesWorkDir(t *testing.T) {
	tr, l := newTestTracker()
	tr.SetWorkDir("/opt/downbad")

	mustSubmit(t, tr)

	assert.Equal(t, "/opt/downbad", l.call(t, 0).dir)
}

func TestOnOutputLine_Progress(t *testing.T) {
	tr, _ := newTestTracker()
	rec := mustSubmit(t, tr)

	tr.OnOutputLine(rec.ID, "[download] 45.2%")

	stored := mustGet(t, tr, rec.ID)
	assert.InDelta(t, 45.2, stored.Progress, 0.0001)
	assert.Equal(t, model.ProgressParsed, stored.ProgressMode)
}

func TestOnOutputLine_Fields(t *testing.T) {
	tr, _ := newTestTracker()
	rec := mustSubmit(t, tr)

	tr.OnOutputLine(rec.ID, "Title: My Video")
	tr.OnOutputLine(rec.ID, "[download]  12.0% of 10.00MiB at 1.2MiB/s ETA 00:08")
	tr.OnOutputLine(rec.ID, "Stage: Starting audio download...")

	stored := mustGet(t, tr, rec.ID)
	assert.Equal(t, "My Video", stored.Title)
	assert.InDelta(t, 12.0, stored.Progress, 0.0001)
	assert.Equal(t, "1.2MiB/s", stored.Speed)
	assert.Equal(t, "00:08", stored.ETA)
	assert.Equal(t, "Starting audio download...", stored.Stage)
}

func TestOnOutputLine_SpeedEmbedded(t *testing.T) {
	tr, _ := newTestTracker()
	rec := mustSubmit(t, tr)

	tr.OnOutputLine(rec.ID, "some text 1.2MiB/s more text")

	assert.Equal(t, "1.2MiB/s", mustGet(t, tr, rec.ID).Speed)
}

func TestOnOutputLine_NoMatchNoSignal(t *testing.T) {
	tr, _ := newTestTracker()
	rec := mustSubmit(t, tr)

	var calls atomic.Int32
	tr.SetUpdateCallback(func(model.Record) { calls.Add(1) })

	tr.OnOutputLine(rec.ID, "Starting download...")
	tr.OnOutputLine(rec.ID, "")
	assert.Equal(t, int32(0), calls.Load())

	tr.OnOutputLine(rec.ID, "[download] 1.0%")
	tr.OnOutputLine(rec.ID, "[download] 1.0%")
	assert.Equal(t, int32(1), calls.Load())
}

func TestOnOutputLine_SignalsOnlyThatRecord(t *testing.T) {
	tr, _ := newTestTracker()
	a := mustSubmit(t, tr)
	b := mustSubmit(t, tr)

	var ids []string
	tr.SetUpdateCallback(func(r model.Record) { ids = append(ids, r.ID) })

	tr.OnOutputLine(b.ID, "[download] 10.0%")

	assert.Equal(t, []string{b.ID}, ids)
	assert.Zero(t, mustGet(t, tr, a.ID).Progress)
}

func TestOnOutputLine_UnknownOrTerminalIgnored(t *testing.T) {
	tr, _ := newTestTracker()
	rec := mustSubmit(t, tr)

	tr.OnOutputLine("dl-missing", "[download] 50.0%")

	tr.OnProcessExit(rec.ID, 0, "")
	tr.OnOutputLine(rec.ID, "[download] 10.0%")

	stored := mustGet(t, tr, rec.ID)
	assert.Equal(t, model.StatusComplete, stored.Status)
	assert.Equal(t, 100.0, stored.Progress)
}

func TestOnProcessExit_Success(t *testing.T) {
	tr, _ := newTestTracker()
	rec := mustSubmit(t, tr)
	tr.OnOutputLine(rec.ID, "[download] 80.0%")

	tr.OnProcessExit(rec.ID, 0, "")

	stored := mustGet(t, tr, rec.ID)
	assert.Equal(t, model.StatusComplete, stored.Status)
	assert.Equal(t, 100.0, stored.Progress)
	assert.False(t, stored.FinishedAt.IsZero())
}

func TestOnProcessExit_Failure(t *testing.T) {
	tests := []struct {
		name     string
		stderr   string
		expected string
	}{
		{"stderr message", "network error", "network error"},
		{"trimmed stderr", "network error\n", "network error"},
		{"empty stderr", "", DefaultProcessFailure},
		{"whitespace stderr", "  \n", DefaultProcessFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTestTracker()
			rec := mustSubmit(t, tr)

			tr.OnProcessExit(rec.ID, 1, tt.stderr)

			stored := mustGet(t, tr, rec.ID)
			assert.Equal(t, model.StatusError, stored.Status)
			assert.Equal(t, tt.expected, stored.ErrorMessage)
		})
	}
}

func TestOnProcessExit_Idempotent(t *testing.T) {
	tr, _ := newTestTracker()
	rec := mustSubmit(t, tr)

	tr.OnProcessExit(rec.ID, 1, "network error")
	first := mustGet(t, tr, rec.ID)

	var calls atomic.Int32
	tr.SetUpdateCallback(func(model.Record) { calls.Add(1) })
	tr.OnProcessExit(rec.ID, 0, "")

	assert.Equal(t, first, mustGet(t, tr, rec.ID))
	assert.Equal(t, int32(0), calls.Load())
}

func TestOnProcessExit_ViaSink(t *testing.T) {
	tr, l := newTestTracker()
	rec := mustSubmit(t, tr)
	sink := l.call(t, 0).sink

	sink.OnStdoutLine("[download] 30.0%")
	sink.OnStderrChunk("ERROR: ")
	sink.OnStderrChunk("Video unavailable")
	sink.OnExit(1)

	stored := mustGet(t, tr, rec.ID)
	assert.Equal(t, model.StatusError, stored.Status)
	assert.Equal(t, "ERROR: Video unavailable", stored.ErrorMessage)
	assert.Equal(t, 30.0, stored.Progress)
}

func TestCancel_TerminatesProcess(t *testing.T) {
	tr, l := newTestTracker()
	rec := mustSubmit(t, tr)

	require.NoError(t, tr.Cancel(rec.ID))

	assert.Equal(t, model.StatusCancelled, mustGet(t, tr, rec.ID).Status)
	assert.Equal(t, int32(1), l.handles[0].terminated.Load())

	// The killed process reports a non-zero exit which must not override cancellation.
	l.call(t, 0).sink.OnExit(-1)
	assert.Equal(t, model.StatusCancelled, mustGet(t, tr, rec.ID).Status)
}

func TestCancel_TerminalIsNoop(t *testing.T) {
	for _, code := range []int{0, 1} {
		t.Run(fmt.Sprintf("exit %d", code), func(t *testing.T) {
			tr, l := newTestTracker()
			rec := mustSubmit(t, tr)
			tr.OnProcessExit(rec.ID, code, "boom")
			before := mustGet(t, tr, rec.ID)

			require.NoError(t, tr.Cancel(rec.ID))

			assert.Equal(t, before, mustGet(t, tr, rec.ID))
			assert.Equal(t, int32(0), l.handles[0].terminated.Load())
		})
	}
}

func TestCancel_Unknown(t *testing.T) {
	tr, _ := newTestTracker()

	err := tr.Cancel("dl-missing")

	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestCancel_BeforeLaunchAccepted(t *testing.T) {
	tr, _ := newTestTracker()
	h := &fakeHandle{pid: 7, done: make(chan struct{})}

	tr.mu.Lock()
	tr.records["dl-x"] = &entry{rec: model.Record{ID: "dl-x", Status: model.StatusQueued}}
	tr.order = append(tr.order, "dl-x")
	tr.mu.Unlock()

	require.NoError(t, tr.Cancel("dl-x"))
	tr.markLaunched("dl-x", h)

	assert.Equal(t, model.StatusCancelled, mustGet(t, tr, "dl-x").Status)
	assert.Equal(t, int32(1), h.terminated.Load())
}

func TestRemove(t *testing.T) {
	tr, l := newTestTracker()
	a := mustSubmit(t, tr)
	b := mustSubmit(t, tr)
	c := mustSubmit(t, tr)

	tr.Remove(b.ID)

	ids := make([]string, 0)
	for _, r := range tr.List() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{a.ID, c.ID}, ids)
	assert.Equal(t, int32(0), l.handles[1].terminated.Load())

	// Late events for the removed record are dropped.
	l.call(t, 1).sink.OnStdoutLine("[download] 50.0%")
	l.call(t, 1).sink.OnExit(0)
	_, ok := tr.Get(b.ID)
	assert.False(t, ok)

	// Unknown IDs are a no-op.
	tr.Remove("dl-missing")
	assert.Len(t, tr.List(), 2)
}

func TestList_SnapshotIsolation(t *testing.T) {
	tr, _ := newTestTracker()
	rec := mustSubmit(t, tr)

	list := tr.List()
	list[0].Status = model.StatusError
	list[0].Title = "mutated"

	stored := mustGet(t, tr, rec.ID)
	assert.Equal(t, model.StatusDownloading, stored.Status)
	assert.Equal(t, model.TitlePlaceholder, stored.Title)
	assert.Equal(t, tr.List(), tr.List())
}

func TestConcurrentRecords(t *testing.T) {
	tr, l := newTestTracker()

	const n = 8
	ids := make([]string, n)
	for i := range ids {
		ids[i] = mustSubmit(t, tr).ID
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sink := l.call(t, i).sink
			for p := 0; p <= 50; p++ {
				sink.OnStdoutLine(fmt.Sprintf("[download] %d.0%% of 1MiB at %d.0KiB/s", p+i, i+1))
			}
			if i%2 == 0 {
				sink.OnExit(0)
			} else {
				sink.OnStderrChunk(fmt.Sprintf("failed %d", i))
				sink.OnExit(2)
			}
		}(i)
	}
	wg.Wait()

	for i, id := range ids {
		rec := mustGet(t, tr, id)
		if i%2 == 0 {
			assert.Equal(t, model.StatusComplete, rec.Status)
			assert.Equal(t, 100.0, rec.Progress)
		} else {
			assert.Equal(t, model.StatusError, rec.Status)
			assert.Equal(t, fmt.Sprintf("failed %d", i), rec.ErrorMessage)
			assert.Equal(t, float64(50+i), rec.Progress)
		}
		assert.Equal(t, fmt.Sprintf("%d.0KiB/s", i+1), rec.Speed)
	}
}

type stubExpander struct {
	playlist *model.Playlist
	err      error
}

func (s *stubExpander) IsPlaylistURL(url string) bool { return strings.Contains(url, "list=") }

func (s *stubExpander) Expand(context.Context, string) (*model.Playlist, error) {
	return s.playlist, s.err
}

func TestSubmitPlaylist(t *testing.T) {
	tr, l := newTestTracker()
	pl := model.NewPlaylist("PL1", "https://www.youtube.com/playlist?list=PL1")
	pl.AddEntry(&model.PlaylistEntry{ID: "a", URL: "https://www.youtube.com/watch?v=a"})
	pl.AddEntry(&model.PlaylistEntry{ID: "b", URL: "https://www.youtube.com/watch?v=b"})
	tr.SetPlaylistExpander(&stubExpander{playlist: pl})

	records, err := tr.SubmitPlaylist(context.Background(), pl.URL, "/tmp", false, true)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "https://www.youtube.com/watch?v=a", records[0].URL)
	assert.Equal(t, []string{"https://www.youtube.com/watch?v=b", "/tmp", "audio"}, l.call(t, 1).argv)
}

func TestSubmitPlaylist_SingleVideo(t *testing.T) {
	tr, _ := newTestTracker()
	tr.SetPlaylistExpander(&stubExpander{err: errors.New("must not be called")})

	records, err := tr.SubmitPlaylist(context.Background(), "https://youtu.be/x", "/tmp", true, false)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSubmitPlaylist_Errors(t *testing.T) {
	tr, _ := newTestTracker()
	tr.SetPlaylistExpander(&stubExpander{err: errors.New("boom")})

	_, err := tr.SubmitPlaylist(context.Background(), "https://youtube.com/playlist?list=PL", "/tmp", true, false)
	assert.ErrorContains(t, err, "failed to expand playlist")

	tr.SetPlaylistExpander(&stubExpander{playlist: model.NewPlaylist("PL", "")})
	_, err = tr.SubmitPlaylist(context.Background(), "https://youtube.com/playlist?list=PL", "/tmp", true, false)
	assert.ErrorContains(t, err, "playlist has no videos")

	_, err = tr.SubmitPlaylist(context.Background(), "https://youtube.com/playlist?list=PL", "/tmp", false, false)
	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
	assert.Empty(t, tr.List())
}

func TestEstimate(t *testing.T) {
	tr, _ := newTestTracker()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return start }
	tr.SetEstimateDuration(100 * time.Second)

	rec := mustSubmit(t, tr)

	tr.Estimate(start.Add(30 * time.Second))
	stored := mustGet(t, tr, rec.ID)
	assert.Equal(t, model.ProgressEstimated, stored.ProgressMode)
	assert.InDelta(t, 30.0, stored.EstimatedProgress, 0.0001)
	assert.Zero(t, stored.Progress)

	tr.Estimate(start.Add(time.Hour))
	assert.Equal(t, MaxEstimatedProgress, mustGet(t, tr, rec.ID).EstimatedProgress)

	// Parsed progress takes over for good.
	tr.OnOutputLine(rec.ID, "[download] 12.0%")
	tr.Estimate(start.Add(2 * time.Hour))
	stored = mustGet(t, tr, rec.ID)
	assert.Equal(t, model.ProgressParsed, stored.ProgressMode)
	v, estimated := stored.DisplayProgress()
	assert.Equal(t, 12.0, v)
	assert.False(t, estimated)
}

func TestEstimate_Disabled(t *testing.T) {
	tr, _ := newTestTracker()
	rec := mustSubmit(t, tr)

	tr.Estimate(time.Now().Add(time.Hour))

	assert.Equal(t, model.ProgressNone, mustGet(t, tr, rec.ID).ProgressMode)
}

func TestRunEstimator_StopsOnCancel(t *testing.T) {
	tr, _ := newTestTracker()
	tr.SetEstimateDuration(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		tr.RunEstimator(ctx, 10*time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("estimator did not stop")
	}
}

type recordingMetrics struct {
	mu      sync.Mutex
	events  []string
	matched int
	missed  int
}

func (m *recordingMetrics) add(e string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *recordingMetrics) RecordSubmitted() { m.add("submitted") }
func (m *recordingMetrics) RecordStarted()   { m.add("started") }
func (m *recordingMetrics) RecordFinished(from, to model.Status, _ time.Duration) {
	m.add(fmt.Sprintf("finished:%s->%s", from, to))
}
func (m *recordingMetrics) RecordRemoved(s model.Status) { m.add("removed:" + string(s)) }
func (m *recordingMetrics) RecordLine(matched bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if matched {
		m.matched++
	} else {
		m.missed++
	}
}

func TestMetrics(t *testing.T) {
	tr, _ := newTestTracker()
	m := &recordingMetrics{}
	tr.SetMetrics(m)

	rec := mustSubmit(t, tr)
	tr.OnOutputLine(rec.ID, "[download] 5.0%")
	tr.OnOutputLine(rec.ID, "nothing here")
	tr.OnProcessExit(rec.ID, 0, "")
	tr.Remove(rec.ID)

	assert.Equal(t, []string{
		"submitted",
		"started",
		"finished:downloading->complete",
		"removed:complete",
	}, m.events)
	assert.Equal(t, 1, m.matched)
	assert.Equal(t, 1, m.missed)
}
