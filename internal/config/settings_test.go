package config

import (
	"testing"

	"fyne.io/fyne/v2/test"
)

func TestNewSettings(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if settings.app != app {
		t.Error("Settings app reference should match provided app")
	}
}

func TestDownloadDirectory(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	dir := settings.GetDownloadDirectory()
	if dir == "" {
		t.Error("Download directory should not be empty")
	}

	// Reading the default must not persist it
	if stored := app.Preferences().String(KeyDownloadDir); stored != "" {
		t.Errorf("Default directory should not be stored, got %s", stored)
	}

	// Test setting custom value
	customDir := "/custom/downloads"
	settings.SetDownloadDirectory(customDir)

	retrievedDir := settings.GetDownloadDirectory()
	if retrievedDir != customDir {
		t.Errorf("Expected download directory %s, got %s", customDir, retrievedDir)
	}
}

func TestDefaultMedia(t *testing.T) {
	tests := []struct {
		name               string
		video, audio       bool
		wantVideo, wantAud bool
	}{
		{"audio only", false, true, false, true},
		{"both", true, true, true, true},
		{"video only", true, false, true, false},
		{"none falls back", false, false, DefaultVideo, DefaultAudio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := test.NewApp()
			settings := NewSettings(app)

			video, audio := settings.GetDefaultMedia()
			if video != DefaultVideo || audio != DefaultAudio {
				t.Errorf("Expected defaults %v/%v, got %v/%v", DefaultVideo, DefaultAudio, video, audio)
			}

			settings.SetDefaultMedia(tt.video, tt.audio)

			video, audio = settings.GetDefaultMedia()
			if video != tt.wantVideo || audio != tt.wantAud {
				t.Errorf("Expected %v/%v, got %v/%v", tt.wantVideo, tt.wantAud, video, audio)
			}
		})
	}
}

func TestLanguage(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if lang := settings.GetLanguage(); lang != DefaultLanguage {
		t.Errorf("Expected default language %s, got %s", DefaultLanguage, lang)
	}

	settings.SetLanguage("ru")
	if lang := settings.GetLanguage(); lang != "ru" {
		t.Errorf("Expected language ru, got %s", lang)
	}

	options := settings.GetLanguageOptions()
	for _, code := range []string{"system", "en", "ru", "pt"} {
		if _, ok := options[code]; !ok {
			t.Errorf("Language option %s is missing", code)
		}
	}
}
