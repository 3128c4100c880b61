package apply

// ProgressReporter receives commit progress.
type ProgressReporter interface {
	OnCommitStart(totalFiles int)
	OnFileCommitted(result FileResult)
	OnCommitComplete(report *Report)
}

// NoOpProgressReporter is a progress reporter that does nothing.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnCommitStart(totalFiles int)      {}
func (NoOpProgressReporter) OnFileCommitted(result FileResult) {}
func (NoOpProgressReporter) OnCommitComplete(report *Report)   {}
