package ui

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle           = "app_title"
	KeyDownload           = "download"
	KeySettings           = "settings"
	KeyFile               = "file"
	KeyLanguage           = "language"
	KeyEnterURL           = "enter_url"
	KeyFolder             = "folder"
	KeyBrowse             = "browse"
	KeyVideo              = "video"
	KeyAudio              = "audio"
	KeyCancel             = "cancel"
	KeyRemove             = "remove"
	KeyOpenFolder         = "open_folder"
	KeySave               = "save"
	KeyDefaultFolder      = "default_folder"
	KeyDefaultMedia       = "default_media"
	KeySettingsSaved      = "settings_saved"
	KeyDownloadStarted    = "download_started"
	KeyPlaylistAdded      = "playlist_added"
	KeyExpandingPlaylist  = "expanding_playlist"
	KeyInvalidURL         = "invalid_url"
	KeyFolderOpened       = "folder_opened"
	KeyErrorOpeningFolder = "error_opening_folder"
	KeyReady              = "ready"
	KeySummary            = "summary"
	KeyTotal              = "total"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		// Use system locale - simplified to English for now
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle:           "DownBad",
		KeyDownload:           "Download",
		KeySettings:           "Settings",
		KeyFile:               "File",
		KeyLanguage:           "Language",
		KeyEnterURL:           "Paste a video URL (https://youtube.com/watch?v=...)",
		KeyFolder:             "Destination folder",
		KeyBrowse:             "Browse",
		KeyVideo:              "Video",
		KeyAudio:              "Audio",
		KeyCancel:             "Cancel",
		KeyRemove:             "Remove",
		KeyOpenFolder:         "Open Folder",
		KeySave:               "Save",
		KeyDefaultFolder:      "Default folder",
		KeyDefaultMedia:       "Download by default",
		KeySettingsSaved:      "Settings saved successfully!",
		KeyDownloadStarted:    "Download started",
		KeyPlaylistAdded:      "Playlist added: %d videos",
		KeyExpandingPlaylist:  "Reading playlist...",
		KeyInvalidURL:         "Invalid URL",
		KeyFolderOpened:       "Folder opened",
		KeyErrorOpeningFolder: "Error opening folder",
		KeyReady:              "Ready to download",
		KeySummary:            "%d downloading, %d complete",
		KeyTotal:              "%d total",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyAppTitle:           "DownBad",
		KeyDownload:           "Скачать",
		KeySettings:           "Настройки",
		KeyFile:               "Файл",
		KeyLanguage:           "Язык",
		KeyEnterURL:           "Вставьте URL видео (https://youtube.com/watch?v=...)",
		KeyFolder:             "Папка назначения",
		KeyBrowse:             "Обзор",
		KeyVideo:              "Видео",
		KeyAudio:              "Аудио",
		KeyCancel:             "Отмена",
		KeyRemove:             "Удалить",
		KeyOpenFolder:         "Открыть папку",
		KeySave:               "Сохранить",
		KeyDefaultFolder:      "Папка по умолчанию",
		KeyDefaultMedia:       "Скачивать по умолчанию",
		KeySettingsSaved:      "Настройки успешно сохранены!",
		KeyDownloadStarted:    "Загрузка начата",
		KeyPlaylistAdded:      "Плейлист добавлен: %d видео",
		KeyExpandingPlaylist:  "Чтение плейлиста...",
		KeyInvalidURL:         "Неверный URL",
		KeyFolderOpened:       "Папка открыта",
		KeyErrorOpeningFolder: "Ошибка открытия папки",
		KeyReady:              "Готово к загрузке",
		KeySummary:            "загружается: %d, завершено: %d",
		KeyTotal:              "всего: %d",
	}

	// Portuguese texts
	l.texts["pt"] = map[string]string{
		KeyAppTitle:           "DownBad",
		KeyDownload:           "Baixar",
		KeySettings:           "Configurações",
		KeyFile:               "Arquivo",
		KeyLanguage:           "Idioma",
		KeyEnterURL:           "Cole a URL do vídeo (https://youtube.com/watch?v=...)",
		KeyFolder:             "Pasta de destino",
		KeyBrowse:             "Navegar",
		KeyVideo:              "Vídeo",
		KeyAudio:              "Áudio",
		KeyCancel:             "Cancelar",
		KeyRemove:             "Remover",
		KeyOpenFolder:         "Abrir Pasta",
		KeySave:               "Salvar",
		KeyDefaultFolder:      "Pasta padrão",
		KeyDefaultMedia:       "Baixar por padrão",
		KeySettingsSaved:      "Configurações salvas com sucesso!",
		KeyDownloadStarted:    "Download iniciado",
		KeyPlaylistAdded:      "Playlist adicionada: %d vídeos",
		KeyExpandingPlaylist:  "Lendo playlist...",
		KeyInvalidURL:         "URL inválida",
		KeyFolderOpened:       "Pasta aberta",
		KeyErrorOpeningFolder: "Erro ao abrir pasta",
		KeyReady:              "Pronto para baixar",
		KeySummary:            "%d baixando, %d concluídos",
		KeyTotal:              "%d no total",
	}
}
