package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconFolder   = "📁"
)

// Text fragments
const (
	MiddleDotSeparator   = " · "
	EstimatedMarker      = "~"
	ProgressLabelFormat  = "%.1f%%"
	EstimatedLabelFormat = EstimatedMarker + "%.0f%%"
	ETAFormat            = "ETA %s"
)

// Layout sizing
const (
	StatusLabelWidth  float32 = 96
	PercentLabelWidth float32 = 64
	WindowWidth       float32 = 720
	WindowHeight      float32 = 520
	LogoSize          float32 = 32
	SettingsWidth     float32 = 500
	SettingsHeight    float32 = 320
)

// Notification behavior
const (
	NotificationAutoHide = 4 * time.Second
)
