package main

import (
	"fmt"
	"os/exec"
	"runtime"
)

type OperatingSystem string

const (
	Linux   OperatingSystem = "Linux"
	MacOS   OperatingSystem = "MacOS"
	Windows OperatingSystem = "Windows"
)

func currentOS() (OperatingSystem, error) {
	switch runtime.GOOS {
	case "linux":
		return Linux, nil
	case "darwin":
		return MacOS, nil
	case "windows":
		return Windows, nil
	default:
		return "", fmt.Errorf("Unsupported OS: %s", runtime.GOOS)
	}
}

func openURL(os OperatingSystem, url string) error {
	var cmd *exec.Cmd
	switch os {
	case Linux:
		cmd = exec.Command("xdg-open", url)
	case MacOS:
		cmd = exec.Command("open", url)
	case Windows:
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("Cannot open %s on unsupported OS", url)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("Failed to open domain %s: %w", url, err)
	}

	// Reap the opener in the background so it does not block the dashboard
	go cmd.Wait()

	return nil
}
