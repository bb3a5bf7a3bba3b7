package scan

// ProgressReporter provides callbacks for reporting corpus scan progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when corpus file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(files int)

	// OnScanStart is called before document scanning begins.
	OnScanStart(totalLaws int)

	// OnLawScanned is called after each law finishes scanning.
	OnLawScanned(lawID, title string)

	// OnComplete is called when the scan completes.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(files int)    {}
func (n *NoOpProgressReporter) OnScanStart(totalLaws int)        {}
func (n *NoOpProgressReporter) OnLawScanned(lawID, title string) {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)          {}
