package aggregate

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"interview-bot/internal/interview"
)

// ErrNoData is returned by ExportFile while no interview has been stored.
var ErrNoData = errors.New("aggregate: no data")

// TableWriter (re)writes the whole collection to a file.
type TableWriter interface {
	Write(rows []Row) error
	Path() string
}

// Journal receives every appended row. Implementations must be safe for
// concurrent use.
type Journal interface {
	AppendRow(row Row) error
}

// Sink is the process-lifetime collection of completed interviews. Append
// and the rewrite that follows it happen under one lock, so concurrent
// appends never interleave partial writes.
type Sink struct {
	mu      sync.Mutex
	rows    []Row
	writer  TableWriter
	journal Journal
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Sink)

func WithJournal(j Journal) Option {
	return func(s *Sink) { s.journal = j }
}

func WithClock(now func() time.Time) Option {
	return func(s *Sink) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sink) { s.logger = l }
}

// NewSink creates an empty sink. writer may be nil, in which case rows are
// kept in memory only.
func NewSink(writer TableWriter, opts ...Option) *Sink {
	s := &Sink{
		writer: writer,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Append flattens rec, stores the row and rewrites the table. A failed
// rewrite or journal write is returned, but the row stays in memory.
func (s *Sink) Append(rec *interview.Record) (interview.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := Flatten(rec, s.now())
	s.rows = append(s.rows, row)
	receipt := interview.Receipt{Total: len(s.rows), Dropped: row.DroppedPains}

	if row.DroppedPains > 0 {
		s.logger.Warn("pain analyses exceed row capacity, extra entries not exported",
			"respondent", row.Respondent, "committed", row.PainCount, "dropped", row.DroppedPains)
	}

	var errs []error
	if err := s.rewriteLocked(); err != nil {
		errs = append(errs, err)
	}
	if s.journal != nil {
		if err := s.journal.AppendRow(row); err != nil {
			errs = append(errs, fmt.Errorf("journal row: %w", err))
		}
	}
	if len(errs) == 0 {
		s.logger.Info("interview stored", "respondent", row.Respondent, "total", len(s.rows))
	}
	return receipt, errors.Join(errs...)
}

// ExportFile rewrites the table and returns its path.
func (s *Sink) ExportFile() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rows) == 0 {
		return "", ErrNoData
	}
	if s.writer == nil {
		return "", errors.New("aggregate: no table writer configured")
	}
	if err := s.rewriteLocked(); err != nil {
		return "", err
	}
	return s.writer.Path(), nil
}

// ComputeStats summarizes every stored row.
func (s *Sink) ComputeStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeStats(s.rows)
}

// Rows returns a copy of the collection in insertion order.
func (s *Sink) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Row(nil), s.rows...)
}

// Len returns the number of stored rows.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *Sink) rewriteLocked() error {
	if s.writer == nil {
		return nil
	}
	if err := s.writer.Write(SortByCapture(s.rows)); err != nil {
		return fmt.Errorf("rewrite %s: %w", s.writer.Path(), err)
	}
	return nil
}

// SortByCapture returns a copy of rows ordered by capture time, oldest first.
func SortByCapture(rows []Row) []Row {
	out := append([]Row(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CapturedAt.Before(out[j].CapturedAt)
	})
	return out
}
