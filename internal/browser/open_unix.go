//go:build !darwin && !windows

package browser

import (
	"os"
	"os/exec"
)

func command(url string) *exec.Cmd {
	return exec.Command("xdg-open", url)
}

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}
