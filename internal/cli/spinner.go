package cli

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

const spinnerInterval = 100 * time.Millisecond

// RunWithSpinner runs fn while an indeterminate spinner is drawn to w. The
// spinner is cleared once fn returns. When enabled is false fn simply runs.
func RunWithSpinner[T any](w io.Writer, enabled bool, description string, fn func() T) T {
	if !enabled {
		return fn()
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan T, 1)
	go func() {
		done <- fn()
	}()

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for {
		select {
		case value := <-done:
			_ = bar.Finish()
			return value
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}
