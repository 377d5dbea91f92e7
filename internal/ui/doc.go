package ui

// Package ui contains the Fyne-based desktop user interface for the application.
// It wires user input to the download tracker and re-renders the record list
// from tracker snapshots on every change signal. All UI strings are localized
// via Localization.
