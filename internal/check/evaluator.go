// Package check evaluates devices and assets against alerting thresholds.
//
// The evaluator is pure: it takes a snapshot and a reference time and
// returns findings. All network and report plumbing lives elsewhere.
package check

import (
	"math"
	"time"

	"github.com/proactive-net/datto-check/internal/datto"
)

// AssetTypeAgent is the asset type that gets screenshot verification.
const AssetTypeAgent = "agent"

// Evaluator applies the configured thresholds to device and asset
// snapshots.
type Evaluator struct {
	thresholds Thresholds
}

// NewEvaluator creates an evaluator with the given thresholds.
func NewEvaluator(t Thresholds) *Evaluator {
	return &Evaluator{thresholds: t}
}

// CheckDevice runs the device-level rules. When offline is true the device
// missed its check-in window: the critical finding is the last one produced
// and the caller must not run storage or asset checks for this device.
func (e *Evaluator) CheckDevice(dev datto.Device, now time.Time) (findings []Finding, offline bool) {
	if dev.ActiveTickets > 0 {
		noun := "tickets"
		if dev.ActiveTickets == 1 {
			noun = "ticket"
		}
		findings = append(findings, info("Appliance has %d active %s", dev.ActiveTickets, noun))
	}

	sinceCheckin := now.Sub(dev.LastSeen.Time)
	if sinceCheckin >= e.thresholds.CheckinLimit {
		findings = append(findings, critical("CRITICAL - Last checkin was %s ago!", FormatElapsed(sinceCheckin)))
		return findings, true
	}

	used := dev.LocalStorageUsed.Size
	available := dev.LocalStorageAvailable.Size
	if total := used + available; total > 0 {
		pct := round2(float64(used) / float64(total) * 100)
		if pct > e.thresholds.StoragePercent {
			findings = append(findings, critical("Local storage exceeds %g%%!  Current Usage: %.2f%%",
				e.thresholds.StoragePercent, pct))
		}
	}

	return findings, false
}

// CheckAsset runs the asset-level rules. Archived and paused assets are
// skipped entirely and return nil.
func (e *Evaluator) CheckAsset(asset datto.Asset, now time.Time) []Finding {
	if asset.IsArchived || asset.IsPaused {
		return nil
	}

	var findings []Finding

	sinceSnapshot := now.Sub(time.Unix(asset.LastSnapshot, 0))
	if sinceSnapshot > e.thresholds.BackupAge {
		if len(asset.Backups) == 0 {
			findings = append(findings, info("%s: does not seem to have any backups!", asset.Name))
		} else if latest := asset.Backups[0].Backup; !latest.Succeeded() {
			findings = append(findings, critical("%s: Last scheduled backup failed; last backup was %s ago\n       -->  %q",
				asset.Name, FormatElapsed(sinceSnapshot), latest.ErrorMessage))
		}
	}

	if asset.LatestOffsite == nil {
		findings = append(findings, info("%s: no off-site backup points", asset.Name))
	} else if sinceOffsite := now.Sub(time.Unix(*asset.LatestOffsite, 0)); sinceOffsite > e.thresholds.OffsiteAge {
		findings = append(findings, critical("%s: Last off-site was %s ago", asset.Name, FormatElapsed(sinceOffsite)))
	}

	if asset.Type == AssetTypeAgent {
		if asset.LastScreenshotAttempt != nil {
			sinceScreenshot := now.Sub(time.Unix(*asset.LastScreenshotAttempt, 0))
			if sinceScreenshot > e.thresholds.ScreenshotAge {
				findings = append(findings, critical("%s: Last screenshot attempt was %s ago!", asset.Name, FormatElapsed(sinceScreenshot)))
			}
		}
		if asset.LastScreenshotAttemptStatus != nil && !*asset.LastScreenshotAttemptStatus {
			findings = append(findings, info("%s: Last screenshot attempt failed!", asset.Name))
		}
	}

	return findings
}

// round2 rounds to two decimal places, matching the report's storage
// percentage wording.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
