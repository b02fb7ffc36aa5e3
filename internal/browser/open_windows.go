//go:build windows

package browser

import "os/exec"

func command(url string) *exec.Cmd {
	return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
}

func hasDisplay() bool {
	// Windows Server Core still has a desktop (even if minimal).
	return true
}
