// Package runner drives one full check pass: probe, device listing,
// per-device and per-asset evaluation, report aggregation.
//
// # Run Lifecycle
//
//  1. Connectivity probe (fail-fast, no retry)
//  2. Fetch all devices (paginated)
//  3. Per visible device: device checks; offline devices short-circuit
//  4. Per non-archived, non-paused asset: asset checks
//  5. Return the aggregated report to the caller
//
// The pass is fully sequential; the report is the only mutable state and
// the runner owns it until Run returns.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/proactive-net/datto-check/internal/check"
	"github.com/proactive-net/datto-check/internal/datto"
	"github.com/proactive-net/datto-check/internal/report"
)

// DeviceAPI is the slice of the vendor client the runner needs.
type DeviceAPI interface {
	Ping(ctx context.Context) error
	ListDevices(ctx context.Context) ([]datto.Device, error)
	GetAssetDetails(ctx context.Context, serialNumber string) ([]datto.Asset, error)
}

// Runner executes one check pass.
type Runner struct {
	client    DeviceAPI
	evaluator *check.Evaluator
	logger    *slog.Logger

	// now is injectable for tests.
	now func() time.Time
}

// New creates a runner.
func New(client DeviceAPI, evaluator *check.Evaluator, logger *slog.Logger) *Runner {
	return &Runner{
		client:    client,
		evaluator: evaluator,
		logger:    logger.With("component", "runner"),
		now:       time.Now,
	}
}

// Run performs one pass and returns the report. Any API error is fatal:
// the pass stops and no report is returned.
func (r *Runner) Run(ctx context.Context) (*report.Report, error) {
	start := r.now()

	if err := r.client.Ping(ctx); err != nil {
		return nil, err
	}

	devices, err := r.client.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	rep := report.New(start.UTC())
	hidden := 0

	for _, dev := range devices {
		// Hidden devices are excluded before any rule runs.
		if dev.Hidden {
			hidden++
			continue
		}

		res, err := r.checkDevice(ctx, dev)
		if err != nil {
			return nil, err
		}
		rep.AddDevice(res)
	}

	r.logger.Info("check pass complete",
		"run_id", rep.RunID,
		"duration", time.Since(start),
		"devices", len(devices),
		"hidden", hidden,
		"findings", rep.FindingCount(),
	)

	return rep, nil
}

// checkDevice evaluates one device and, unless it is offline, its assets.
func (r *Runner) checkDevice(ctx context.Context, dev datto.Device) (report.DeviceResult, error) {
	res := report.DeviceResult{
		Name:         dev.Name,
		SerialNumber: dev.SerialNumber,
	}

	now := r.now()
	findings, offline := r.evaluator.CheckDevice(dev, now)
	res.Findings = findings

	if offline {
		// Presumed offline: asset data would be stale, skip it entirely.
		res.Offline = true
		r.logger.Warn("device presumed offline",
			"device", dev.Name,
			"last_seen", dev.LastSeen.Time,
		)
		return res, nil
	}

	assets, err := r.client.GetAssetDetails(ctx, dev.SerialNumber)
	if err != nil {
		return res, fmt.Errorf("assets for device %s: %w", dev.Name, err)
	}

	for _, asset := range assets {
		assetFindings := r.evaluator.CheckAsset(asset, now)
		if len(assetFindings) == 0 {
			continue
		}
		res.Assets = append(res.Assets, report.AssetResult{
			Name:     asset.Name,
			Findings: assetFindings,
		})
	}

	return res, nil
}
