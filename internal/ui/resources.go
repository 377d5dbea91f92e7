package ui

import (
	"fyne.io/fyne/v2"
)

const (
	AppIcon = "downbad.png"
)

// LoadLogoResource loads the logo from the working directory. The window
// falls back to a text-only header when it is missing.
func LoadLogoResource() (fyne.Resource, error) {
	return fyne.LoadResourceFromPath(AppIcon)
}
