package app

import (
	"os/exec"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
)

// openExternal hands a URL to the platform's default opener. The mail
// body is rendered by the sandboxed document viewer behind that URL;
// this program never fetches or parses the content itself.
func openExternal(url string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			cmd = exec.Command("xdg-open", url)
		}
		// Best effort; a missing opener is not worth an error state.
		_ = cmd.Start()
		return nil
	}
}
