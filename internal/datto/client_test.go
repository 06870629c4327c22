package datto

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// testLogger returns a logger that discards output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		BaseURL:   srv.URL,
		Username:  "apiuser",
		Password:  "apisecret",
		RateLimit: 60000, // keep tests fast
	}, testLogger())
	return client, srv
}

func TestListDevicesFollowsPagesAndSorts(t *testing.T) {
	pagesServed := make(map[string]int)

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "apiuser" || pass != "apisecret" {
			t.Errorf("missing or wrong basic auth: %q/%q", user, pass)
		}

		page := r.URL.Query().Get("_page")
		pagesServed[page]++
		switch page {
		case "1":
			fmt.Fprint(w, `{
				"pagination": {"page": 1, "perPage": 2, "totalPages": 2},
				"items": [
					{"serialNumber": "B", "name": "bravo", "lastSeenDate": "2024-05-01T10:00:00+00:00",
					 "localStorageUsed": {"size": 1}, "localStorageAvailable": {"size": 1}},
					{"serialNumber": "Z", "name": "ZULU", "lastSeenDate": "2024-05-01T10:00:00+00:00",
					 "localStorageUsed": {"size": 1}, "localStorageAvailable": {"size": 1}}
				]
			}`)
		case "2":
			fmt.Fprint(w, `{
				"pagination": {"page": 2, "perPage": 2, "totalPages": 2},
				"items": [
					{"serialNumber": "A", "name": "Alpha", "lastSeenDate": "2024-05-01T10:00:00+00:00",
					 "localStorageUsed": {"size": 1}, "localStorageAvailable": {"size": 1}}
				]
			}`)
		default:
			t.Errorf("unexpected page request %q", page)
			http.NotFound(w, r)
		}
	}))

	devices, err := client.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}

	if len(devices) != 3 {
		t.Fatalf("got %d devices, want 3", len(devices))
	}
	wantOrder := []string{"Alpha", "bravo", "ZULU"}
	for i, want := range wantOrder {
		if devices[i].Name != want {
			t.Errorf("devices[%d].Name = %q, want %q (case-insensitive sort)", i, devices[i].Name, want)
		}
	}
	if pagesServed["1"] != 1 || pagesServed["2"] != 1 {
		t.Errorf("pages served = %v, want each page exactly once", pagesServed)
	}
}

func TestErrorEnvelopeIsAPIError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code": 401, "message": "Invalid credentials"}`)
	}))

	err := client.Ping(context.Background())
	if err == nil {
		t.Fatal("Ping succeeded against an error envelope")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an *APIError", err)
	}
	if apiErr.Code != 401 || apiErr.Message != "Invalid credentials" {
		t.Errorf("envelope = %+v", apiErr)
	}
}

func TestNonEnvelopeServerErrorSurfacesStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusBadGateway)
	}))

	_, err := client.ListDevices(context.Background())
	if err == nil {
		t.Fatal("ListDevices succeeded against a 502")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("plain HTTP failure misclassified as API envelope: %v", err)
	}
}

func TestGetAssetDetails(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/D0ABC/asset" {
			t.Errorf("path = %q, want /D0ABC/asset", r.URL.Path)
		}
		fmt.Fprint(w, `[
			{"name": "fileserver", "type": "agent", "lastSnapshot": 1714557000, "latestOffsite": 1714557000},
			{"name": "nas-share", "type": "snapnas", "lastSnapshot": 1714557000, "latestOffsite": null}
		]`)
	}))

	assets, err := client.GetAssetDetails(context.Background(), "D0ABC")
	if err != nil {
		t.Fatalf("GetAssetDetails: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("got %d assets, want 2", len(assets))
	}
	if assets[0].Name != "fileserver" || assets[0].Type != "agent" {
		t.Errorf("assets[0] = %+v", assets[0])
	}
	if assets[1].LatestOffsite != nil {
		t.Errorf("assets[1].LatestOffsite = %v, want nil", *assets[1].LatestOffsite)
	}
}

func TestPingOK(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"pagination": {"page": 1, "perPage": 100, "totalPages": 1}, "items": []}`)
	}))

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
