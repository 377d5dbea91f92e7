// Package download implements the download tracker: it owns every download
// record, starts the external downloader through a launcher, and derives
// status transitions from process events and parsed progress lines.
package download
