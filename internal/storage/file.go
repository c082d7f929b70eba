package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"interview-bot/internal/aggregate"
)

// FileJournal stores one JSON-encoded row per line.
type FileJournal struct {
	path string
	mu   sync.Mutex
}

func NewFileJournal(path string) (*FileJournal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure journal dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to init journal file: %w", err)
	}
	_ = f.Close()
	return &FileJournal{path: path}, nil
}

func (j *FileJournal) Path() string { return j.path }

func (j *FileJournal) AppendRow(row aggregate.Row) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open append: %w", err)
	}
	enc := json.NewEncoder(f)
	if err := enc.Encode(row); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode append: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close append: %w", err)
	}
	return nil
}

// LoadRows reads the journal back. Lines that fail to decode are skipped and
// logged.
func (j *FileJournal) LoadRows() ([]aggregate.Row, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	f, err := os.Open(j.path)
	if err != nil {
		return nil, fmt.Errorf("open read: %w", err)
	}
	defer func() { _ = f.Close() }()

	s := bufio.NewScanner(f)
	buf := make([]byte, 0, 1024*1024)
	s.Buffer(buf, 10*1024*1024)
	var rows []aggregate.Row
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := s.Bytes()
		if len(line) == 0 {
			continue
		}
		var r aggregate.Row
		if err := json.Unmarshal(line, &r); err != nil {
			slog.Warn("skipping malformed journal line", "path", j.path, "line", lineNo, "error", err)
			continue
		}
		rows = append(rows, r)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return rows, nil
}
