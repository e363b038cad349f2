package cli

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// progressEnabled reports whether progress bars may be drawn on stderr.
var progressEnabled = func() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

// newProgressBar creates a progress bar with consistent styling.
func newProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(!flagNoColor),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// progressFunc returns a ProgressFunc drawing a bar on stderr, or nil
// when stderr is not a terminal. The bar is created on the first event,
// once the total is known.
func progressFunc(description string) (domain.ProgressFunc, func()) {
	if !progressEnabled() {
		return nil, func() {}
	}
	var bar *progressbar.ProgressBar
	fn := func(done, total int, item string) {
		if bar == nil {
			bar = newProgressBar(os.Stderr, total, description)
		}
		bar.Describe(description + " " + item)
		_ = bar.Set(done)
	}
	finish := func() {
		if bar != nil {
			_ = bar.Finish()
		}
	}
	return fn, finish
}
