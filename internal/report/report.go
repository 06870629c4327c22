// Package report collects findings per device into a structured record and
// a flat text buffer suitable for stdout and email bodies.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/proactive-net/datto-check/internal/check"
)

// Report is the outcome of one check pass. It is the only mutable state in
// a run and is owned by the runner for the run's duration.
type Report struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Devices     []DeviceResult `json:"devices"`

	// lines is the flat ordered text buffer: device header, finding lines,
	// blank separator. Only devices with findings contribute.
	lines []string
}

// DeviceResult holds everything recorded about one evaluated device.
type DeviceResult struct {
	Name         string          `json:"name"`
	SerialNumber string          `json:"serial_number"`
	Offline      bool            `json:"offline,omitempty"`
	Findings     []check.Finding `json:"findings,omitempty"`
	Assets       []AssetResult   `json:"assets,omitempty"`
}

// AssetResult holds the findings recorded for one asset.
type AssetResult struct {
	Name     string          `json:"name"`
	Findings []check.Finding `json:"findings,omitempty"`
}

// FindingCount returns the number of findings across the device and its
// assets.
func (d DeviceResult) FindingCount() int {
	n := len(d.Findings)
	for _, a := range d.Assets {
		n += len(a.Findings)
	}
	return n
}

// New creates an empty report stamped with a fresh run ID.
func New(now time.Time) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: now,
	}
}

// AddDevice records one device's results. Every evaluated device is kept in
// the structured report; only devices with findings reach the text buffer.
// No deduplication, no ranking.
func (r *Report) AddDevice(res DeviceResult) {
	r.Devices = append(r.Devices, res)

	if res.FindingCount() == 0 {
		return
	}

	r.lines = append(r.lines, fmt.Sprintf("--DEVICE: %s", res.Name))
	for _, f := range res.Findings {
		r.lines = append(r.lines, f.Line())
	}
	for _, a := range res.Assets {
		for _, f := range a.Findings {
			r.lines = append(r.lines, f.Line())
		}
	}
	r.lines = append(r.lines, "")
}

// HasFindings reports whether any device contributed to the text buffer.
func (r *Report) HasFindings() bool {
	return len(r.lines) > 0
}

// FindingCount returns the total number of findings in the report.
func (r *Report) FindingCount() int {
	n := 0
	for _, d := range r.Devices {
		n += d.FindingCount()
	}
	return n
}

// Render returns the flat text report. Empty when no device had findings.
func (r *Report) Render() string {
	return strings.Join(r.lines, "\n")
}
