package datto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Device is one BCDR appliance as reported by the vendor API.
type Device struct {
	SerialNumber          string      `json:"serialNumber"`
	Name                  string      `json:"name"`
	Model                 string      `json:"model,omitempty"`
	Hidden                bool        `json:"hidden"`
	LastSeen              Time        `json:"lastSeenDate"`
	ActiveTickets         int         `json:"activeTickets"`
	LocalStorageUsed      StorageSize `json:"localStorageUsed"`
	LocalStorageAvailable StorageSize `json:"localStorageAvailable"`
}

// Asset is one protected machine or share behind a device. The vendor
// calls these "agents" even when they are NAS shares; Type distinguishes
// real agents ("agent") from everything else.
type Asset struct {
	Name                        string        `json:"name"`
	Type                        string        `json:"type"`
	IsArchived                  bool          `json:"isArchived"`
	IsPaused                    bool          `json:"isPaused"`
	LastSnapshot                int64         `json:"lastSnapshot"`
	LatestOffsite               *int64        `json:"latestOffsite"`
	LastScreenshotAttempt       *int64        `json:"lastScreenshotAttempt"`
	LastScreenshotAttemptStatus *bool         `json:"lastScreenshotAttemptStatus"`
	Backups                     []BackupEntry `json:"backups"`
}

// BackupEntry is one item of an asset's backup history, most recent first.
type BackupEntry struct {
	Backup BackupPoint `json:"backup"`
}

// BackupPoint holds the outcome of a single backup run.
type BackupPoint struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
}

// Succeeded reports whether the backup run completed cleanly.
func (b BackupPoint) Succeeded() bool {
	return b.Status == "success"
}

// StorageSize unwraps the API's {"size": N} envelope around byte counts.
// The size value arrives as a JSON number or, on some firmware versions,
// a quoted string.
type StorageSize struct {
	Size int64
}

func (s *StorageSize) UnmarshalJSON(data []byte) error {
	var raw struct {
		Size json.Number `json:"size"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing storage size envelope: %w", err)
	}
	if raw.Size == "" {
		s.Size = 0
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw.Size.String()), 10, 64)
	if err != nil {
		return fmt.Errorf("parsing storage size %q: %w", raw.Size, err)
	}
	s.Size = n
	return nil
}

func (s StorageSize) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Size int64 `json:"size"`
	}{Size: s.Size})
}

// Time parses the API's check-in timestamps. Most responses use RFC 3339
// ("2024-05-01T10:00:00+00:00") but older appliances omit the colon in the
// zone offset, so both layouts are accepted. A timestamp that matches
// neither is an explicit error rather than a zero time.
type Time struct {
	time.Time
}

const compactZoneLayout = "2006-01-02T15:04:05-0700"

func (t *Time) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing timestamp: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		parsed, err = time.Parse(compactZoneLayout, raw)
	}
	if err != nil {
		return fmt.Errorf("malformed timestamp %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339))
}
