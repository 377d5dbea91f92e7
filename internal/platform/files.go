package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
)

// DownloadsDirName is the conventional downloads folder under the home directory
const DownloadsDirName = "Downloads"

// File manager names
var (
	LinuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}
)

// Process hooks, replaced in tests
var (
	runCommand = func(name string, args ...string) error {
		return exec.Command(name, args...).Run()
	}
	lookPath = exec.LookPath
	goos     = runtime.GOOS
)

// OpenFolder opens the directory in the system file manager
func OpenFolder(dirPath string) error {
	if dirPath == "" {
		return fmt.Errorf("folder path is empty")
	}

	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("folder does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a folder: %s", absPath)
	}

	switch goos {
	case OSDarwin:
		return runCommand(OpenCommand, absPath)
	case OSWindows:
		// explorer exits with code 1 even on success
		_ = runCommand(ExplorerCommand, absPath)
		return nil
	case OSLinux:
		return openFolderLinux(absPath)
	default:
		return fmt.Errorf("unsupported operating system: %s", goos)
	}
}

// openFolderLinux tries xdg-open first and falls back to common file managers
func openFolderLinux(dir string) error {
	err := runCommand(XDGOpenCommand, dir)
	if err == nil {
		return nil
	}

	for _, fm := range LinuxFileManagers {
		if _, lookErr := lookPath(fm); lookErr == nil {
			return runCommand(fm, dir)
		}
	}

	return fmt.Errorf("no suitable file manager found: %w", err)
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, DownloadsDirName), nil
}
