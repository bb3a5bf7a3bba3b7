package cli

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/s-hayashi/lawgraph/internal/scan"
)

// CLIProgressReporter implements scan progress reporting with a progress bar.
type CLIProgressReporter struct {
	quiet bool
	bar   *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a progress reporter for terminal output.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	fmt.Println("Discovering law files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	if c.quiet {
		return
	}
	fmt.Printf("Found %d law files\n", files)
}

func (c *CLIProgressReporter) OnScanStart(totalLaws int) {
	if c.quiet {
		return
	}
	c.bar = progressbar.NewOptions(totalLaws,
		progressbar.OptionSetDescription("Scanning laws"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("laws/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (c *CLIProgressReporter) OnLawScanned(lawID, title string) {
	if c.quiet || c.bar == nil {
		return
	}
	c.bar.Add(1)
}

func (c *CLIProgressReporter) OnComplete(stats *scan.Stats) {
	if c.quiet {
		return
	}
	fmt.Println()
	fmt.Printf("✓ Scan complete: %d references across %d laws in %.1fs\n",
		stats.References, stats.LawsScanned, stats.Duration.Seconds())
	if stats.FilesFailed > 0 {
		fmt.Printf("  Skipped files: %d\n", stats.FilesFailed)
	}
	if stats.Failures > 0 {
		fmt.Printf("  Discarded candidates: %d\n", stats.Failures)
	}
}
