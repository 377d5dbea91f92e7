package model

// Status represents the lifecycle state of a download record
type Status string

const (
	// StatusQueued means the record was created and launch was requested
	StatusQueued Status = "queued"

	// StatusDownloading means the launcher accepted the request
	StatusDownloading Status = "downloading"

	// StatusComplete means the external process exited with code 0
	StatusComplete Status = "complete"

	// StatusError means launch failed or the process exited non-zero
	StatusError Status = "error"

	// StatusCancelled means the user cancelled the download
	StatusCancelled Status = "cancelled"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsActive returns true if the record may still receive process events
func (s Status) IsActive() bool {
	return s == StatusQueued || s == StatusDownloading
}

// IsTerminal returns true if no transition leaves this status
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusError || s == StatusCancelled
}

// Label returns the human-friendly status name used in lists
func (s Status) Label() string {
	switch s {
	case StatusQueued:
		return "Queued"
	case StatusDownloading:
		return "Downloading"
	case StatusComplete:
		return "Complete"
	case StatusError:
		return "Error"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// ProgressMode tells where a record's progress value comes from
type ProgressMode string

const (
	// ProgressNone means no progress is known yet
	ProgressNone ProgressMode = ""

	// ProgressParsed means Progress was read from the downloader output
	ProgressParsed ProgressMode = "parsed"

	// ProgressEstimated means only an elapsed-time estimate is available
	ProgressEstimated ProgressMode = "estimated"
)
