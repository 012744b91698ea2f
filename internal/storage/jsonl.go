package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"marketSettle/internal/model"
)

// JsonlStorage appends settlement records and pool snapshots as JSON
// lines, one file each.
type JsonlStorage struct {
	settlementsPath string
	snapshotsPath   string
	mu              sync.Mutex
}

func NewJsonlStorage(settlementsPath, snapshotsPath string) *JsonlStorage {
	return &JsonlStorage{settlementsPath: settlementsPath, snapshotsPath: snapshotsPath}
}

// PutSettlements appends a batch of settlement records.
func (s *JsonlStorage) PutSettlements(records []model.SettlementRecord) error {
	if len(records) == 0 || s.settlementsPath == "" {
		return nil
	}
	lines := make([]any, len(records))
	for i, r := range records {
		lines[i] = r
	}
	return s.appendLines(s.settlementsPath, lines)
}

// UpsertPoolSnapshots appends pool snapshots. JSONL has no keys to
// conflict on; the latest line for a pool wins on read.
func (s *JsonlStorage) UpsertPoolSnapshots(snapshots []model.PoolSnapshot) error {
	if len(snapshots) == 0 || s.snapshotsPath == "" {
		return nil
	}
	lines := make([]any, len(snapshots))
	for i, snap := range snapshots {
		lines[i] = snap
	}
	return s.appendLines(s.snapshotsPath, lines)
}

func (s *JsonlStorage) appendLines(path string, records []any) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
