package datto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDeviceUnmarshal(t *testing.T) {
	payload := `{
		"serialNumber": "D0ABC",
		"name": "backup01",
		"hidden": false,
		"lastSeenDate": "2024-05-01T10:30:00+00:00",
		"activeTickets": 2,
		"localStorageUsed": {"size": 950},
		"localStorageAvailable": {"size": "50"}
	}`

	var dev Device
	if err := json.Unmarshal([]byte(payload), &dev); err != nil {
		t.Fatalf("unmarshal device: %v", err)
	}

	if dev.SerialNumber != "D0ABC" || dev.Name != "backup01" {
		t.Errorf("identity fields = %q/%q", dev.SerialNumber, dev.Name)
	}
	if dev.ActiveTickets != 2 {
		t.Errorf("activeTickets = %d", dev.ActiveTickets)
	}
	if dev.LocalStorageUsed.Size != 950 {
		t.Errorf("numeric storage size = %d, want 950", dev.LocalStorageUsed.Size)
	}
	if dev.LocalStorageAvailable.Size != 50 {
		t.Errorf("quoted storage size = %d, want 50", dev.LocalStorageAvailable.Size)
	}

	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	if !dev.LastSeen.Equal(want) {
		t.Errorf("lastSeenDate = %v, want %v", dev.LastSeen.Time, want)
	}
}

func TestTimeCompactZoneOffset(t *testing.T) {
	// Older appliances omit the colon in the zone offset.
	var ts Time
	if err := json.Unmarshal([]byte(`"2024-05-01T10:30:00+0000"`), &ts); err != nil {
		t.Fatalf("unmarshal compact offset: %v", err)
	}
	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("parsed = %v, want %v", ts.Time, want)
	}
}

func TestTimeMalformedIsExplicitError(t *testing.T) {
	var ts Time
	err := json.Unmarshal([]byte(`"yesterday-ish"`), &ts)
	if err == nil {
		t.Fatal("malformed timestamp did not error")
	}
	if !strings.Contains(err.Error(), "malformed timestamp") {
		t.Errorf("error = %v", err)
	}
}

func TestAssetUnmarshalNullables(t *testing.T) {
	payload := `{
		"name": "fileserver",
		"type": "agent",
		"isArchived": false,
		"isPaused": false,
		"lastSnapshot": 1714557000,
		"latestOffsite": null,
		"lastScreenshotAttempt": 1714557000,
		"lastScreenshotAttemptStatus": false,
		"backups": [{"backup": {"status": "failure", "errorMessage": "disk full"}}]
	}`

	var asset Asset
	if err := json.Unmarshal([]byte(payload), &asset); err != nil {
		t.Fatalf("unmarshal asset: %v", err)
	}

	if asset.LatestOffsite != nil {
		t.Errorf("latestOffsite = %v, want nil", *asset.LatestOffsite)
	}
	if asset.LastScreenshotAttempt == nil || *asset.LastScreenshotAttempt != 1714557000 {
		t.Errorf("lastScreenshotAttempt = %v", asset.LastScreenshotAttempt)
	}
	if asset.LastScreenshotAttemptStatus == nil || *asset.LastScreenshotAttemptStatus {
		t.Errorf("lastScreenshotAttemptStatus = %v", asset.LastScreenshotAttemptStatus)
	}
	if len(asset.Backups) != 1 || asset.Backups[0].Backup.Succeeded() {
		t.Errorf("backups = %+v", asset.Backups)
	}
	if asset.Backups[0].Backup.ErrorMessage != "disk full" {
		t.Errorf("errorMessage = %q", asset.Backups[0].Backup.ErrorMessage)
	}
}
