package cli

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// progressMode returns the configured progress mode: "auto", "tty", or "plain".
func progressMode() string {
	mode := viper.GetString("progress")
	switch mode {
	case "auto", "tty", "plain":
		return mode
	default:
		return "auto"
	}
}

// shouldShowProgress returns true if progress bars should be displayed.
func shouldShowProgress() bool {
	mode := progressMode()

	// Plain mode disables progress
	if mode == "plain" {
		return false
	}

	// TTY mode forces progress regardless of terminal detection
	if mode == "tty" {
		return true
	}

	// Auto mode: show progress only if connected to a TTY
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// newCountBar creates a progress bar over a known number of items.
// Returns nil if progress should not be shown.
func newCountBar(total int, description string) *progressbar.ProgressBar {
	if !shouldShowProgress() || total == 0 {
		return nil
	}
	return progressbar.NewOptions(
		total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionUseANSICodes(true),
	)
}

// barAdd advances a possibly-nil bar by one item.
func barAdd(bar *progressbar.ProgressBar) {
	if bar != nil {
		//nolint:errcheck // progress bar errors are not critical
		bar.Add(1)
	}
}

// barFinish completes a possibly-nil bar.
func barFinish(bar *progressbar.ProgressBar) {
	if bar != nil {
		//nolint:errcheck // progress bar errors are not critical
		bar.Finish()
	}
}

func init() {
	viper.SetDefault("progress", "auto")
	//nolint:errcheck // missing env binding falls back to the default
	viper.BindEnv("progress", "VACH_PROGRESS")
}
