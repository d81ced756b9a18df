package types

// Source identifies which monitoring system produced an inbound payload.
type Source string

const (
	// SourceAzureMonitor is an Azure Monitor common-alert-schema payload.
	SourceAzureMonitor Source = "azure"

	// SourceGitHubActions is a pipeline-failure payload posted by a CI job.
	// It is also the fallback for any payload that is not Azure Monitor.
	SourceGitHubActions Source = "github"
)

// Severity is an Azure-style severity level, Sev0 being the most urgent.
// Values outside the known scale are carried verbatim.
type Severity string

const (
	SevCritical Severity = "Sev0"
	SevError    Severity = "Sev1"
	SevWarning  Severity = "Sev2"
	SevInfo     Severity = "Sev3"
	SevVerbose  Severity = "Sev4"
)

// Callable reports whether the severity is in the top three tiers and is
// therefore eligible for a voice call.
func (s Severity) Callable() bool {
	switch s {
	case SevCritical, SevError, SevWarning:
		return true
	default:
		return false
	}
}

// Alert is the normalized form of one inbound payload.
type Alert struct {
	Source   Source
	Text     string
	Severity Severity

	// Key buckets recurring alerts for cooldown purposes.
	Key string
}
