package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"campusmap/internal/models"
	"campusmap/internal/store"
)

const feed = `[
  {"name": "Tech Tower", "latitude": "33.772605", "longitude": "-84.394857", "address": "225 North Ave NW", "phone_num": "404-894-2000"},
  {"name": "Clough Undergraduate Learning Commons", "latitude": "33.774904", "longitude": "-84.396424", "address": "266 4th St NW", "phone_num": ""},
  {"name": "Student Center", "latitude": "not-a-number", "longitude": "-84.398", "address": "350 Ferst Dr NW", "phone_num": "404-894-2805"}
]`

func newFeed(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(feed))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"CAMPUSMAP_SOURCE", "CAMPUSMAP_HIGHLIGHT", "KAFKA_BROKER", "LOG_LEVEL", "CAMPUSMAP_FETCH_TIMEOUT"} {
		t.Setenv(k, "")
	}
	// flag values outlive Execute
	_ = listCmd.Flags().Set("json", "false")
	_ = rootCmd.PersistentFlags().Set("highlight", "1.4s")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestList_Filter(t *testing.T) {
	srv := newFeed(t, http.StatusOK)

	out, err := execute(t, "list", "--source", srv.URL, "CLOUGH")
	if err != nil {
		t.Fatalf("list error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Clough Undergraduate Learning Commons") || !strings.Contains(out, "266 4th St NW") {
		t.Errorf("output missing the match:\n%s", out)
	}
	if strings.Contains(out, "Tech Tower") {
		t.Errorf("output contains a building that does not match:\n%s", out)
	}
}

func TestList_AllWithUnparsableCoordinates(t *testing.T) {
	srv := newFeed(t, http.StatusOK)

	out, err := execute(t, "list", "--source", srv.URL)
	if err != nil {
		t.Fatalf("list error = %v\n%s", err, out)
	}
	for _, want := range []string{"Tech Tower", "Student Center", "33.772605"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Tech Tower") > strings.Index(out, "Student Center") {
		t.Errorf("feed order not kept:\n%s", out)
	}
}

func TestList_JSON(t *testing.T) {
	srv := newFeed(t, http.StatusOK)

	out, err := execute(t, "list", "--json", "--source", srv.URL, "tech")
	if err != nil {
		t.Fatalf("list error = %v\n%s", err, out)
	}
	var got []models.Building
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got) != 1 || got[0].Name != "Tech Tower" || got[0].PhoneNum != "404-894-2000" {
		t.Fatalf("unexpected buildings %+v", got)
	}
}

func TestList_NoMatch(t *testing.T) {
	srv := newFeed(t, http.StatusOK)

	out, err := execute(t, "list", "--source", srv.URL, "zzz")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, `no buildings match "zzz"`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestList_FetchFailure(t *testing.T) {
	srv := newFeed(t, http.StatusInternalServerError)

	_, err := execute(t, "list", "--source", srv.URL)
	var fe *store.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v; want *store.FetchError", err)
	}
}

func TestRoot_InvalidConfiguration(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"negative highlight", []string{"list", "--highlight", "-1s"}},
		{"unknown scheme", []string{"list", "--source", "ftp://example.test/buildings"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := execute(t, tc.args...); err == nil {
				t.Fatalf("%v succeeded", tc.args)
			}
		})
	}
}
