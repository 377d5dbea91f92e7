package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/downbad/internal/model"
)

// progressDisplay returns the bar value and its label. Estimated values are
// marked so they are never mistaken for parsed progress.
func progressDisplay(rec model.Record) (float64, string) {
	value, estimated := rec.DisplayProgress()
	if estimated {
		return value, fmt.Sprintf(EstimatedLabelFormat, value)
	}
	return value, fmt.Sprintf(ProgressLabelFormat, value)
}

// detailText joins speed, ETA and stage, or returns the error message of a
// failed record
func detailText(rec model.Record) string {
	if rec.Status == model.StatusError {
		return rec.ErrorMessage
	}

	parts := make([]string, 0, 3)
	if rec.Speed != "" {
		parts = append(parts, rec.Speed)
	}
	if rec.ETA != "" {
		parts = append(parts, fmt.Sprintf(ETAFormat, rec.ETA))
	}
	if rec.Stage != "" {
		parts = append(parts, rec.Stage)
	}
	return strings.Join(parts, MiddleDotSeparator)
}

// cleanText keeps labels on one line
func cleanText(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(s))
}

// RecordRow renders one download record
type RecordRow struct {
	widget.BaseWidget

	rec          model.Record
	localization *Localization

	// UI components
	titleLabel  *widget.Label
	statusLabel *widget.Label
	progressBar *widget.ProgressBar
	detailLabel *widget.Label
	content     *fyne.Container

	// Action buttons
	cancelBtn *widget.Button
	removeBtn *widget.Button
	openBtn   *widget.Button

	// Callbacks
	onCancel func(id string)
	onRemove func(id string)
	onOpen   func(id string)

	progressLabel string
}

// NewRecordRow creates a new record row widget
func NewRecordRow(localization *Localization) *RecordRow {
	r := &RecordRow{localization: localization}
	r.ExtendBaseWidget(r)
	r.createUI()
	return r
}

// SetCallbacks sets the action callbacks
func (r *RecordRow) SetCallbacks(onCancel, onRemove, onOpen func(id string)) {
	r.onCancel = onCancel
	r.onRemove = onRemove
	r.onOpen = onOpen
}

func (r *RecordRow) createUI() {
	r.titleLabel = widget.NewLabel("")
	r.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	r.titleLabel.Truncation = fyne.TextTruncateEllipsis

	r.statusLabel = widget.NewLabel("")
	r.statusLabel.Alignment = fyne.TextAlignTrailing

	r.progressBar = widget.NewProgressBar()
	r.progressBar.Max = 100
	r.progressBar.TextFormatter = func() string { return r.progressLabel }

	r.detailLabel = widget.NewLabel("")
	r.detailLabel.TextStyle = fyne.TextStyle{Monospace: true}
	r.detailLabel.Truncation = fyne.TextTruncateEllipsis

	// Buttons read the current record at click time since rows are recycled
	r.cancelBtn = widget.NewButton(r.localization.GetText(KeyCancel), func() {
		if r.onCancel != nil {
			r.onCancel(r.rec.ID)
		}
	})
	r.cancelBtn.Importance = widget.WarningImportance

	r.removeBtn = widget.NewButton(r.localization.GetText(KeyRemove), func() {
		if r.onRemove != nil {
			r.onRemove(r.rec.ID)
		}
	})
	r.removeBtn.Importance = widget.DangerImportance

	r.openBtn = widget.NewButton(IconFolder+" "+r.localization.GetText(KeyOpenFolder), func() {
		if r.onOpen != nil {
			r.onOpen(r.rec.ID)
		}
	})
	r.openBtn.Importance = widget.LowImportance

	status := container.NewGridWrap(fyne.NewSize(StatusLabelWidth, r.statusLabel.MinSize().Height), r.statusLabel)
	header := container.NewBorder(nil, nil, nil, status, r.titleLabel)
	actions := container.NewHBox(layout.NewSpacer(), r.openBtn, r.cancelBtn, r.removeBtn)

	r.content = container.NewVBox(
		header,
		r.progressBar,
		container.NewBorder(nil, nil, nil, actions, r.detailLabel),
		widget.NewSeparator(),
	)
}

// UpdateRecord shows the given snapshot
func (r *RecordRow) UpdateRecord(rec model.Record) {
	r.rec = rec

	r.titleLabel.SetText(cleanText(rec.GetDisplayTitle()))
	r.statusLabel.SetText(rec.Status.Label())
	r.detailLabel.SetText(cleanText(detailText(rec)))

	value, label := progressDisplay(rec)
	r.progressLabel = label
	r.progressBar.SetValue(value)

	if rec.Status.IsActive() {
		r.cancelBtn.Show()
	} else {
		r.cancelBtn.Hide()
	}
	if rec.Status == model.StatusComplete {
		r.openBtn.Show()
	} else {
		r.openBtn.Hide()
	}
}

// RefreshTexts re-reads button captions after a language change
func (r *RecordRow) RefreshTexts() {
	r.cancelBtn.SetText(r.localization.GetText(KeyCancel))
	r.removeBtn.SetText(r.localization.GetText(KeyRemove))
	r.openBtn.SetText(IconFolder + " " + r.localization.GetText(KeyOpenFolder))
}

// CreateRenderer implements fyne.Widget
func (r *RecordRow) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(r.content)
}
