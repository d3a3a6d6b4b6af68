package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"sitewatch/model"
)

// VisitorLog persists visits as a single pretty-printed JSON array on
// disk. Every append rewrites the whole file; mu serializes the
// read-modify-write so concurrent appends cannot lose updates.
type VisitorLog struct {
	path string
	log  *slog.Logger
	mu   sync.Mutex
}

func NewVisitorLog(path string, log *slog.Logger) *VisitorLog {
	return &VisitorLog{path: path, log: log}
}

func (v *VisitorLog) AppendVisit(ctx context.Context, visit model.VisitorEvent) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	visits := append(v.load(), visit)

	data, err := json.MarshalIndent(visits, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal visitor log: %w", err)
	}

	// Write-then-rename so a crash mid-write cannot corrupt the log.
	tmp := v.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write visitor log: %w", err)
	}
	if err := os.Rename(tmp, v.path); err != nil {
		return fmt.Errorf("failed to replace visitor log: %w", err)
	}

	return nil
}

func (v *VisitorLog) RecentVisits(ctx context.Context, limit int) ([]model.VisitorEvent, error) {
	v.mu.Lock()
	visits := v.load()
	v.mu.Unlock()

	recent := make([]model.VisitorEvent, 0, len(visits))
	for i := len(visits) - 1; i >= 0; i-- {
		recent = append(recent, visits[i])
		if len(recent) == limit {
			break
		}
	}

	return recent, nil
}

// load reads the full log. A missing file is an empty log; corrupt or
// non-array content is discarded rather than failing the request.
func (v *VisitorLog) load() []model.VisitorEvent {
	data, err := os.ReadFile(v.path)
	if err != nil {
		if !os.IsNotExist(err) {
			v.log.Error("failed to read visitor log", "path", v.path, "error", err)
		}
		return nil
	}

	var visits []model.VisitorEvent
	if err := json.Unmarshal(data, &visits); err != nil {
		v.log.Warn("visitor log is corrupt, treating as empty", "path", v.path, "error", err)
		return nil
	}

	return visits
}
