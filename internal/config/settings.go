package config

import (
	"fyne.io/fyne/v2"

	"github.com/ytget/downbad/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyDownloadDir  = "download_directory"
	KeyDefaultVideo = "default_video"
	KeyDefaultAudio = "default_audio"
	KeyLanguage     = "app_language"
)

// Default values
const (
	DefaultVideo        = true
	DefaultAudio        = false
	DefaultLanguage     = "system"
	FallbackDownloadDir = "downloads"
)

// Settings manages user preferences edited in the settings dialog
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetDownloadDirectory returns the configured default folder. The system
// Downloads directory is used until the user saves another one.
func (s *Settings) GetDownloadDirectory() string {
	dir := s.app.Preferences().String(KeyDownloadDir)
	if dir != "" {
		return dir
	}

	defaultDir, err := platform.GetHomeDownloadsDir()
	if err != nil {
		return FallbackDownloadDir
	}
	return defaultDir
}

// SetDownloadDirectory sets the default folder
func (s *Settings) SetDownloadDirectory(dir string) {
	s.app.Preferences().SetString(KeyDownloadDir, dir)
}

// GetDefaultMedia returns the media checkboxes preselected for new downloads
func (s *Settings) GetDefaultMedia() (video, audio bool) {
	prefs := s.app.Preferences()
	video = prefs.BoolWithFallback(KeyDefaultVideo, DefaultVideo)
	audio = prefs.BoolWithFallback(KeyDefaultAudio, DefaultAudio)
	if !video && !audio {
		return DefaultVideo, DefaultAudio
	}
	return video, audio
}

// SetDefaultMedia sets the preselected media. A selection without any media
// falls back to the defaults.
func (s *Settings) SetDefaultMedia(video, audio bool) {
	if !video && !audio {
		video, audio = DefaultVideo, DefaultAudio
	}
	s.app.Preferences().SetBool(KeyDefaultVideo, video)
	s.app.Preferences().SetBool(KeyDefaultAudio, audio)
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
		"pt":     "Português",
	}
}
