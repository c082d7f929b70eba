package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"interview-bot/internal/aggregate"
)

func TestFileJournal_AppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "data", "interviews.jsonl")
	j, err := NewFileJournal(p)
	if err != nil {
		t.Fatalf("init journal: %v", err)
	}

	r1 := aggregate.Row{Respondent: "1", CapturedAt: time.Unix(1, 0).UTC(), Pains: []aggregate.PainColumns{{Name: "a", Score: 7}}, PainCount: 1}
	r2 := aggregate.Row{Respondent: "2", CapturedAt: time.Unix(2, 0).UTC()}
	if err := j.AppendRow(r1); err != nil {
		t.Fatalf("append1: %v", err)
	}
	if err := j.AppendRow(r2); err != nil {
		t.Fatalf("append2: %v", err)
	}

	rows, err := j.LoadRows()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2, got %d", len(rows))
	}
	if rows[0].Respondent != "1" || rows[1].Respondent != "2" {
		t.Fatalf("order mismatch: %+v", rows)
	}
	if rows[0].Pains[0].Score != 7 || !rows[0].CapturedAt.Equal(r1.CapturedAt) {
		t.Fatalf("row not round-tripped: %+v", rows[0])
	}

	st, err := os.Stat(p)
	if err != nil || st.Size() == 0 {
		t.Fatalf("file not written")
	}
}

func TestFileJournal_SkipsMalformedLines(t *testing.T) {
	p := filepath.Join(t.TempDir(), "j.jsonl")
	if err := os.WriteFile(p, []byte("{\"respondent\":\"ok\"}\nnot json\n\n{\"respondent\":\"ok2\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	j, err := NewFileJournal(p)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := j.LoadRows()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 2 || rows[1].Respondent != "ok2" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
