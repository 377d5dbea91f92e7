package ui

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/downbad/internal/config"
	"github.com/ytget/downbad/internal/download"
	"github.com/ytget/downbad/internal/model"
	"github.com/ytget/downbad/internal/platform"
)

const logPrefixUI = "[UI]"

// FolderOpener opens a folder in the system file manager
type FolderOpener func(path string) error

// validateURL accepts empty input and http(s) URLs
func validateURL(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return err
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	return nil
}

// canSubmit reports whether the download button should be enabled
func canSubmit(rawURL, folder string, wantVideo, wantAudio bool) bool {
	if strings.TrimSpace(rawURL) == "" || strings.TrimSpace(folder) == "" {
		return false
	}
	if !wantVideo && !wantAudio {
		return false
	}
	return validateURL(rawURL) == nil
}

// statusText returns the status bar text and its details line
func statusText(l *Localization, records []model.Record) (string, string) {
	if len(records) == 0 {
		return l.GetText(KeyReady), ""
	}

	downloading, complete := 0, 0
	for _, rec := range records {
		switch rec.Status {
		case model.StatusDownloading:
			downloading++
		case model.StatusComplete:
			complete++
		}
	}
	return fmt.Sprintf(l.GetText(KeySummary), downloading, complete),
		fmt.Sprintf(l.GetText(KeyTotal), len(records))
}

// RootUI represents the main UI structure
type RootUI struct {
	window       fyne.Window
	downloads    download.Downloader
	settings     *config.Settings
	localization *Localization
	openFolder   FolderOpener

	urlEntry    *widget.Entry
	folderEntry *widget.Entry
	browseBtn   *widget.Button
	videoCheck  *widget.Check
	audioCheck  *widget.Check
	downloadBtn *widget.Button
	recordList  *widget.List

	statusLabel  *widget.Label
	detailsLabel *widget.Label

	notificationLabel *widget.Label
	notificationTimer *time.Timer

	// Snapshot rendered by the list, replaced on every change signal
	mu      sync.Mutex
	records []model.Record
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, app fyne.App, downloads download.Downloader, opener FolderOpener) *RootUI {
	settings := config.NewSettings(app)

	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:       window,
		downloads:    downloads,
		settings:     settings,
		localization: localization,
		openFolder:   opener,
	}

	window.SetTitle(localization.GetText(KeyAppTitle))
	ui.downloads.SetUpdateCallback(ui.onRecordUpdate)

	ui.setupUI()
	ui.reload()
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.createMenu()

	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterURL))
	ui.urlEntry.Validator = validateURL
	ui.urlEntry.OnChanged = func(string) { ui.updateDownloadButton() }
	// Trigger download when user presses Enter in the URL field
	ui.urlEntry.OnSubmitted = func(string) { ui.onDownloadClick() }

	ui.folderEntry = widget.NewEntry()
	ui.folderEntry.SetPlaceHolder(ui.localization.GetText(KeyFolder))
	ui.folderEntry.SetText(ui.settings.GetDownloadDirectory())
	ui.folderEntry.OnChanged = func(string) { ui.updateDownloadButton() }

	ui.browseBtn = widget.NewButton(ui.localization.GetText(KeyBrowse), ui.onBrowseFolder)

	video, audio := ui.settings.GetDefaultMedia()
	ui.videoCheck = widget.NewCheck(ui.localization.GetText(KeyVideo), func(bool) { ui.updateDownloadButton() })
	ui.videoCheck.SetChecked(video)
	ui.audioCheck = widget.NewCheck(ui.localization.GetText(KeyAudio), func(bool) { ui.updateDownloadButton() })
	ui.audioCheck.SetChecked(audio)

	ui.downloadBtn = widget.NewButton(ui.localization.GetText(KeyDownload), ui.onDownloadClick)
	ui.downloadBtn.Importance = widget.HighImportance

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	left := container.NewHBox(settingsBtn)
	if logo, err := LoadLogoResource(); err == nil {
		logoImage := canvas.NewImageFromResource(logo)
		logoImage.SetMinSize(fyne.NewSize(LogoSize, LogoSize))
		logoImage.FillMode = canvas.ImageFillContain
		left = container.NewHBox(logoImage, settingsBtn)
	}

	urlRow := container.NewBorder(nil, nil, left, ui.downloadBtn, ui.urlEntry)
	folderRow := container.NewBorder(nil, nil, nil,
		container.NewHBox(ui.browseBtn, ui.videoCheck, ui.audioCheck), ui.folderEntry)

	ui.notificationLabel = widget.NewLabel("")
	ui.notificationLabel.Wrapping = fyne.TextWrapWord
	ui.notificationLabel.Hide()

	top := container.NewVBox(urlRow, folderRow, ui.notificationLabel, widget.NewSeparator())

	ui.recordList = widget.NewList(
		func() int {
			ui.mu.Lock()
			defer ui.mu.Unlock()
			return len(ui.records)
		},
		func() fyne.CanvasObject {
			row := NewRecordRow(ui.localization)
			row.SetCallbacks(ui.onCancel, ui.onRemove, ui.onOpenFolder)
			return row
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			ui.mu.Lock()
			if id >= len(ui.records) {
				ui.mu.Unlock()
				return
			}
			rec := ui.records[id]
			ui.mu.Unlock()

			if row, ok := obj.(*RecordRow); ok {
				row.RefreshTexts()
				row.UpdateRecord(rec)
			}
		},
	)

	ui.statusLabel = widget.NewLabel("")
	ui.detailsLabel = widget.NewLabel("")
	ui.detailsLabel.Alignment = fyne.TextAlignTrailing
	statusBar := container.NewBorder(widget.NewSeparator(), nil, nil, ui.detailsLabel, ui.statusLabel)

	ui.window.SetContent(container.NewBorder(top, statusBar, nil, nil, ui.recordList))
	ui.window.Resize(fyne.NewSize(WindowWidth, WindowHeight))
	ui.updateDownloadButton()
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for code, name := range ui.localization.GetAvailableLanguages() {
		langCode := code
		langItem := fyne.NewMenuItem(name, func() {
			ui.onLanguageChange(langCode)
		})
		langItem.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem),
		languageMenu,
	))
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.refreshUITexts()
	ui.createMenu()
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))
	ui.urlEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterURL))
	ui.folderEntry.SetPlaceHolder(ui.localization.GetText(KeyFolder))
	ui.browseBtn.SetText(ui.localization.GetText(KeyBrowse))
	ui.videoCheck.Text = ui.localization.GetText(KeyVideo)
	ui.videoCheck.Refresh()
	ui.audioCheck.Text = ui.localization.GetText(KeyAudio)
	ui.audioCheck.Refresh()
	ui.downloadBtn.SetText(ui.localization.GetText(KeyDownload))
	ui.recordList.Refresh()
	ui.updateStatusBar()
}

// updateDownloadButton enables the button only for valid input
func (ui *RootUI) updateDownloadButton() {
	if ui.downloadBtn == nil || ui.videoCheck == nil || ui.audioCheck == nil {
		return
	}
	if canSubmit(ui.urlEntry.Text, ui.folderEntry.Text, ui.videoCheck.Checked, ui.audioCheck.Checked) {
		ui.downloadBtn.Enable()
	} else {
		ui.downloadBtn.Disable()
	}
}

// onBrowseFolder shows the folder picker; cancelling leaves the entry unchanged
func (ui *RootUI) onBrowseFolder() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			log.Printf("%s Folder picker failed: %v", logPrefixUI, err)
			return
		}
		if uri == nil {
			return
		}
		ui.folderEntry.SetText(uri.Path())
	}, ui.window)
}

// onDownloadClick submits the current input. Playlist expansion may hit the
// network, so submission runs off the UI goroutine.
func (ui *RootUI) onDownloadClick() {
	rawURL := strings.TrimSpace(ui.urlEntry.Text)
	folder := strings.TrimSpace(ui.folderEntry.Text)
	wantVideo, wantAudio := ui.videoCheck.Checked, ui.audioCheck.Checked

	if err := validateURL(rawURL); err != nil {
		ui.showNotification(ui.localization.GetText(KeyInvalidURL) + ": " + err.Error())
		return
	}

	ui.downloadBtn.Disable()
	if platform.ExtractPlaylistID(rawURL) != "" {
		ui.showNotification(ui.localization.GetText(KeyExpandingPlaylist))
	}

	go func() {
		records, err := ui.downloads.SubmitPlaylist(context.Background(), rawURL, folder, wantVideo, wantAudio)
		fyne.Do(func() {
			ui.afterSubmit(records, err)
		})
	}()
}

func (ui *RootUI) afterSubmit(records []model.Record, err error) {
	defer ui.updateDownloadButton()

	if err != nil {
		ui.showNotification(err.Error())
		log.Printf("%s Submit failed: %v", logPrefixUI, err)
		ui.reload()
		return
	}

	ui.urlEntry.SetText("")
	if len(records) > 1 {
		ui.showNotification(fmt.Sprintf(ui.localization.GetText(KeyPlaylistAdded), len(records)))
	} else {
		ui.showNotification(ui.localization.GetText(KeyDownloadStarted))
	}
	ui.reload()
}

// onRecordUpdate is the tracker change signal; it may fire on any goroutine
func (ui *RootUI) onRecordUpdate(model.Record) {
	fyne.Do(ui.reload)
}

// reload re-reads the tracker snapshot and refreshes the list
func (ui *RootUI) reload() {
	records := ui.downloads.List()

	ui.mu.Lock()
	ui.records = records
	ui.mu.Unlock()

	if ui.recordList != nil {
		ui.recordList.Refresh()
	}
	ui.updateStatusBar()
}

func (ui *RootUI) updateStatusBar() {
	if ui.statusLabel == nil {
		return
	}
	ui.mu.Lock()
	text, details := statusText(ui.localization, ui.records)
	ui.mu.Unlock()

	ui.statusLabel.SetText(text)
	ui.detailsLabel.SetText(details)
}

func (ui *RootUI) onCancel(id string) {
	if err := ui.downloads.Cancel(id); err != nil {
		ui.showNotification(err.Error())
	}
}

// onRemove drops the record; removal emits no change signal so the list is
// reloaded here
func (ui *RootUI) onRemove(id string) {
	ui.downloads.Remove(id)
	ui.reload()
}

func (ui *RootUI) onOpenFolder(id string) {
	rec, ok := ui.downloads.Get(id)
	if !ok {
		return
	}
	if ui.openFolder == nil {
		ui.showNotification(ui.localization.GetText(KeyErrorOpeningFolder))
		return
	}

	if err := ui.openFolder(rec.Folder); err != nil {
		log.Printf("%s Failed to open folder %s: %v", logPrefixUI, rec.Folder, err)
		ui.showNotification(ui.localization.GetText(KeyErrorOpeningFolder) + ": " + err.Error())
		return
	}
	ui.showNotification(ui.localization.GetText(KeyFolderOpened))
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.window, ui.settings, ui.localization, func() {
		video, audio := ui.settings.GetDefaultMedia()
		ui.videoCheck.SetChecked(video)
		ui.audioCheck.SetChecked(audio)
		if strings.TrimSpace(ui.folderEntry.Text) == "" {
			ui.folderEntry.SetText(ui.settings.GetDownloadDirectory())
		}
		ui.showNotification(ui.localization.GetText(KeySettingsSaved))
	})
}

// showNotification displays a message under the input rows and hides it
// after a while. Must be called on the UI goroutine.
func (ui *RootUI) showNotification(message string) {
	if ui.notificationLabel == nil {
		return
	}
	ui.notificationLabel.SetText(message)
	ui.notificationLabel.Show()

	if ui.notificationTimer != nil {
		ui.notificationTimer.Stop()
	}
	ui.notificationTimer = time.AfterFunc(NotificationAutoHide, func() {
		fyne.Do(ui.notificationLabel.Hide)
	})
}
