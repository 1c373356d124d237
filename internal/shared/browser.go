package shared

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// OpenBrowser shows the login page at rawURL in the default system browser.
//
// Only http and https URLs are opened. Supports macOS, Linux, and Windows.
func OpenBrowser(rawURL string) error {
	cmd, err := browserCommand(runtime.GOOS, rawURL)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	// The opener exits as soon as the browser has the URL.
	go cmd.Wait()
	return nil
}

func browserCommand(goos, rawURL string) (*exec.Cmd, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: refusing to open %q", ErrInvalidArgument, rawURL)
	}

	switch goos {
	case "darwin":
		return exec.Command("open", rawURL), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", rawURL), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
