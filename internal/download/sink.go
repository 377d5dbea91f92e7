package download

import (
	"strings"
	"sync"
)

// recordSink routes the events of one process to its record. Stderr chunks
// are buffered until exit so the error message holds the whole diagnostic.
type recordSink struct {
	tracker *Tracker
	id      string

	mu     sync.Mutex
	stderr strings.Builder
}

func (s *recordSink) OnStdoutLine(line string) {
	s.tracker.OnOutputLine(s.id, line)
}

func (s *recordSink) OnStderrChunk(chunk string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stderr.WriteString(chunk)
}

func (s *recordSink) OnExit(code int) {
	s.mu.Lock()
	stderr := s.stderr.String()
	s.mu.Unlock()
	s.tracker.OnProcessExit(s.id, code, stderr)
}
