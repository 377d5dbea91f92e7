// Package progress extracts download telemetry from free-text downloader
// output. Every rule is independent and a line that matches nothing yields an
// empty Update; the output format is not guaranteed so misses are not errors.
package progress

import (
	"regexp"
	"strconv"
	"strings"
)

// Line markers
const (
	TitleMarker    = "Title:"
	StageMarker    = "Stage:"
	DownloadPrefix = "[download]"
)

// Percentage patterns in priority order
var percentPatterns = []*regexp.Regexp{
	// [download]  45.2% of 11.21MiB at 2.47MiB/s ETA 00:04
	regexp.MustCompile(`\[download\]\s+(\d+(?:\.\d+)?)%`),
	// 45.2% of ~ 11.21MiB
	regexp.MustCompile(`(\d+(?:\.\d+)?)%\s+of\s+~?\s*\S+`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)%`),
}

var (
	speedPattern    = regexp.MustCompile(`(?i)\d+(?:\.\d+)?[KMGT]i?B/s`)
	etaPattern      = regexp.MustCompile(`ETA\s+((?:\d+:)?\d{1,2}:\d{2})\b`)
	downloadMessage = regexp.MustCompile(`^\s*\[download\]\s+(.+?)\s*$`)
)

// Update holds the fields extracted from one output line. Zero values mean
// the corresponding rule did not match.
type Update struct {
	Title      string
	Percent    float64
	HasPercent bool
	Speed      string
	ETA        string
	Stage      string
}

// Empty reports whether no rule matched
func (u Update) Empty() bool {
	return u.Title == "" && !u.HasPercent && u.Speed == "" && u.ETA == "" && u.Stage == ""
}

// ParseLine applies the title, percent, speed, ETA and stage rules to a line
func ParseLine(line string) Update {
	var u Update
	u.Title = ParseTitle(line)
	u.Percent, u.HasPercent = ParsePercent(line)
	u.Speed = ParseSpeed(line)
	u.ETA = ParseETA(line)
	u.Stage = ParseStage(line)
	return u
}

// ParseTitle returns the text after the first "Title:" marker
func ParseTitle(line string) string {
	idx := strings.Index(line, TitleMarker)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(line[idx+len(TitleMarker):])
}

// ParsePercent returns the first percentage found by the priority patterns
func ParsePercent(line string) (float64, bool) {
	if !strings.Contains(line, "%") {
		return 0, false
	}
	for _, re := range percentPatterns {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return v, true
	}
	return 0, false
}

// ParseSpeed returns the first transfer rate such as "1.2MiB/s" verbatim
func ParseSpeed(line string) string {
	return speedPattern.FindString(line)
}

// ParseETA returns the MM:SS or H:MM:SS token following "ETA"
func ParseETA(line string) string {
	m := etaPattern.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return m[1]
}

// ParseStage returns the text after "Stage:", or the message of a
// "[download]" line that carries no percentage
func ParseStage(line string) string {
	if idx := strings.Index(line, StageMarker); idx >= 0 {
		return strings.TrimSpace(line[idx+len(StageMarker):])
	}
	if !strings.Contains(line, DownloadPrefix) {
		return ""
	}
	if _, ok := ParsePercent(line); ok {
		return ""
	}
	m := downloadMessage.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return m[1]
}
