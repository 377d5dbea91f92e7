package model

// Package model defines domain data structures used across the app: download
// records, playlist entries, and status enums. Records are plain values so the
// tracker can hand out snapshots for rendering.
