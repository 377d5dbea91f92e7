package platform

// Package platform contains OS integration and external tooling glue:
// filesystem helpers, opening folders in the system file manager, and
// playlist expansion through the ytdlp library.
