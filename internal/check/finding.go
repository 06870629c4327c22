package check

import "fmt"

// Severity classifies a finding. The report renders it as the literal
// prefix tag the downstream tooling greps for.
type Severity string

const (
	// SeverityInfo marks conditions worth a look but not urgent.
	SeverityInfo Severity = "info"

	// SeverityCritical marks conditions that need attention now.
	SeverityCritical Severity = "critical"
)

// Tag returns the prefix tag used in the text report.
func (s Severity) Tag() string {
	if s == SeverityCritical {
		return "[!]"
	}
	return "[-]"
}

// Finding is a single threshold breach or missing-data condition observed
// on a device or asset.
type Finding struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Line renders the finding as one report line.
func (f Finding) Line() string {
	return fmt.Sprintf(" %s   %s", f.Severity.Tag(), f.Message)
}

func info(format string, args ...any) Finding {
	return Finding{Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)}
}

func critical(format string, args ...any) Finding {
	return Finding{Severity: SeverityCritical, Message: fmt.Sprintf(format, args...)}
}
