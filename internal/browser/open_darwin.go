//go:build darwin

package browser

import "os/exec"

func command(url string) *exec.Cmd {
	return exec.Command("open", url)
}

func hasDisplay() bool {
	// macOS headless environments are rare; let open fail naturally.
	return true
}
