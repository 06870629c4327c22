package check

import "time"

// Thresholds holds every alerting limit in one place, passed explicitly
// to the evaluator. All checks compare against these; nothing else in the
// codebase defines a limit.
type Thresholds struct {
	// CheckinLimit - a device whose last check-in is at least this old is
	// presumed offline and skips all further checks.
	CheckinLimit time.Duration `yaml:"checkin_limit"`

	// StoragePercent - local storage usage above this percentage raises a
	// finding. Percentage of used/(used+available), not server totals.
	StoragePercent float64 `yaml:"storage_percent"`

	// BackupAge - an asset whose newest snapshot is older than this gets
	// its backup history inspected.
	BackupAge time.Duration `yaml:"backup_age"`

	// OffsiteAge - maximum age of the latest off-site point.
	OffsiteAge time.Duration `yaml:"offsite_age"`

	// ScreenshotAge - maximum age of the last screenshot verification
	// attempt, agent-type assets only.
	ScreenshotAge time.Duration `yaml:"screenshot_age"`
}

// DefaultThresholds returns the stock limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CheckinLimit:   20 * time.Minute,
		StoragePercent: 95,
		BackupAge:      12 * time.Hour,
		OffsiteAge:     72 * time.Hour,
		ScreenshotAge:  48 * time.Hour,
	}
}
