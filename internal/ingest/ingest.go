// Package ingest loads raw activity exports, normalizes them and
// upserts them into the record store. Malformed records are dropped
// and logged, never retried; replays of the same export are safe
// because upserts are idempotent by record id.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/internal/normalize"
	"github.com/devexhq/pulse/schema"
)

// Summary reports the outcome of one ingest run.
type Summary struct {
	RunID    string        `json:"run_id"`
	Total    int           `json:"total"`
	Ingested int           `json:"ingested"`
	Dropped  int           `json:"dropped"`
	Duration time.Duration `json:"duration"`
}

// LoadFile reads a JSON export, either a bare array of raw records or
// an object with a top-level "records" array.
func LoadFile(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export %s: %w", path, err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err == nil {
		return raw, nil
	}

	var wrapped struct {
		Records []map[string]any `json:"records"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil || wrapped.Records == nil {
		return nil, fmt.Errorf("export %s is not a JSON array of records", path)
	}
	return wrapped.Records, nil
}

// Run normalizes and upserts raw records into the store. Records with
// an unknown source or missing structural fields are counted as
// dropped; any store failure aborts the run.
func Run(ctx context.Context, store contract.RecordStore, raw []map[string]any) (*Summary, error) {
	start := time.Now()
	summary := &Summary{
		RunID: uuid.NewString(),
		Total: len(raw),
	}

	for _, fields := range raw {
		source, _ := fields["source"].(string)
		record, err := normalize.Normalize(fields, schema.SourceType(source))
		if err != nil {
			var malformed *contract.MalformedRecordError
			if errors.As(err, &malformed) {
				contract.LogWarn(fmt.Sprintf("dropping record (run %s)", summary.RunID), err)
				summary.Dropped++
				continue
			}
			return nil, err
		}

		if err := store.Upsert(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to store record %s: %w", record.ID, err)
		}
		summary.Ingested++
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

// RunFile loads and ingests one export file.
func RunFile(ctx context.Context, store contract.RecordStore, path string) (*Summary, error) {
	raw, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Run(ctx, store, raw)
}
