package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"sitewatch/config"
	"sitewatch/db/jsonfile"
	"sitewatch/geo"
	"sitewatch/model"
	"sitewatch/recorder"
)

type fixedResolver struct{}

func (fixedResolver) Resolve(ctx context.Context, ip string) (geo.Location, error) {
	return geo.Location{City: "Lisbon", Country: "Portugal"}, nil
}

type failingEcho struct{}

func (failingEcho) PublicIP(ctx context.Context) (string, error) {
	return "", errors.New("unreachable")
}

type failingStorage struct{}

func (failingStorage) AppendVisit(ctx context.Context, visit model.VisitorEvent) error {
	return errors.New("disk full")
}

func (failingStorage) RecentVisits(ctx context.Context, limit int) ([]model.VisitorEvent, error) {
	return nil, errors.New("disk on fire")
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: ":0"},
		Recent: config.RecentConfig{Limit: 15},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	storage := jsonfile.NewVisitorLog(filepath.Join(t.TempDir(), "visitors.json"), logger)
	rec := recorder.New(storage, fixedResolver{}, failingEcho{}, logger)
	return NewServer(storage, rec, logger, testConfig())
}

func recordVisit(t *testing.T, h http.Handler, ip string) {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/visit", nil)
	r.Header.Set("X-Forwarded-For", ip)
	r.Header.Set("User-Agent", "Mozilla/5.0")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("record visit for %s: status %d", ip, w.Code)
	}
}

func TestVisitThenVisitors(t *testing.T) {
	h := newTestServer(t).Handler()

	for _, ip := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		recordVisit(t, h, ip)
	}

	r := httptest.NewRequest(http.MethodGet, "/visitors", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("visitors: status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("visitors: content type %q", ct)
	}

	var visits []model.VisitorEvent
	if err := json.NewDecoder(w.Body).Decode(&visits); err != nil {
		t.Fatalf("decode visitors: %v", err)
	}

	want := []string{"3.3.3.3", "2.2.2.2", "1.1.1.1"}
	if len(visits) != len(want) {
		t.Fatalf("expected %d visits, got %d", len(want), len(visits))
	}
	for i, ip := range want {
		if visits[i].IP != ip {
			t.Fatalf("position %d: expected %s, got %s", i, ip, visits[i].IP)
		}
		if visits[i].Location != "Lisbon, Portugal" {
			t.Fatalf("position %d: unexpected location %s", i, visits[i].Location)
		}
	}
}

func TestVisitorsCap(t *testing.T) {
	s := newTestServer(t)
	s.config.Recent.Limit = 2
	h := s.Handler()

	for _, ip := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3", "4.4.4.4"} {
		recordVisit(t, h, ip)
	}

	r := httptest.NewRequest(http.MethodGet, "/visitors", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var visits []model.VisitorEvent
	if err := json.NewDecoder(w.Body).Decode(&visits); err != nil {
		t.Fatalf("decode visitors: %v", err)
	}
	if len(visits) != 2 {
		t.Fatalf("expected 2 visits, got %d", len(visits))
	}
	if visits[0].IP != "4.4.4.4" || visits[1].IP != "3.3.3.3" {
		t.Fatalf("expected newest two visits, got %+v", visits)
	}
}

func TestVisitorsEmptyLog(t *testing.T) {
	h := newTestServer(t).Handler()

	r := httptest.NewRequest(http.MethodGet, "/visitors", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("visitors: status %d", w.Code)
	}
	if got := w.Body.String(); got != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", got)
	}
}

func TestVisitorsStorageErrorDegrades(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := recorder.New(failingStorage{}, fixedResolver{}, failingEcho{}, logger)
	s := NewServer(failingStorage{}, rec, logger, testConfig())
	h := s.Handler()

	r := httptest.NewRequest(http.MethodGet, "/visitors", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("visitors must not fail visibly, got status %d", w.Code)
	}
	if got := w.Body.String(); got != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", got)
	}
}

func TestVisitWriteFailure(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := recorder.New(failingStorage{}, fixedResolver{}, failingEcho{}, logger)
	s := NewServer(failingStorage{}, rec, logger, testConfig())
	h := s.Handler()

	r := httptest.NewRequest(http.MethodGet, "/visit", nil)
	r.Header.Set("X-Forwarded-For", "1.1.1.1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on write failure, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t).Handler()

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("health: status %d", w.Code)
	}
}
